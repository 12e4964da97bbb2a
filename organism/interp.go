// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package organism

import (
	"errors"

	"github.com/fungera/fungera/instset"
	"github.com/fungera/fungera/memory"
	"github.com/fungera/fungera/vec"
)

// Instruction-failure sentinels. None of these ever escape Cycle; they
// are only used internally so dispatch can increment Errors uniformly.
var (
	errBadOperand   = errors.New("organism: bad operand")
	errOutOfBounds  = errors.New("organism: out-of-bounds memory access")
	errEmptyStack   = errors.New("organism: pop from empty stack")
	errFullStack    = errors.New("organism: push onto full stack")
	errBadTemplate  = errors.New("organism: no template found")
	errBadChildSize = errors.New("organism: non-positive or off-grid child size")
)

// dispatch invokes the behavior named by b. It never panics on a
// malformed program; every failure mode funnels into a returned error
// that Cycle folds into the organism's error counter.
func (o *Organism) dispatch(b instset.Behavior, mem *memory.Memory, q Spawner, limits Limits) error {
	switch b {
	case instset.NoOperation:
		return nil
	case instset.MoveUp:
		o.Delta = vec.Up
		return nil
	case instset.MoveDown:
		o.Delta = vec.Down
		return nil
	case instset.MoveRight:
		o.Delta = vec.Right
		return nil
	case instset.MoveLeft:
		o.Delta = vec.Left
		return nil
	case instset.One:
		return o.one(mem)
	case instset.Zero:
		return o.zero(mem)
	case instset.Increment:
		return o.incDec(mem, +1)
	case instset.Decrement:
		return o.incDec(mem, -1)
	case instset.Subtract:
		return o.subtract(mem)
	case instset.IfNotZero:
		return o.ifNotZero(mem)
	case instset.Push:
		return o.push(mem, limits)
	case instset.Pop:
		return o.pop(mem)
	case instset.FindTemplate:
		return o.findTemplate(mem)
	case instset.LoadInst:
		return o.loadInst(mem)
	case instset.WriteInst:
		return o.writeInst(mem)
	case instset.AllocateChild:
		return o.allocateChild(mem)
	case instset.SplitChild:
		return o.splitChild(mem, q)
	default:
		return errBadOperand
	}
}

// regOperand reads the register-letter token at offset and resolves it
// to an index into Regs.
func (o *Organism) regOperand(mem *memory.Memory, offset int) (int, error) {
	ch, ok := o.tokenAt(mem, offset)
	if !ok {
		return 0, errOutOfBounds
	}
	idx, ok := instset.RegisterIndex(ch)
	if !ok {
		return 0, errBadOperand
	}
	return idx, nil
}

func (o *Organism) one(mem *memory.Memory) error {
	r, err := o.regOperand(mem, 1)
	if err != nil {
		return err
	}
	o.Regs[r] = vec.Vec2{X: 1, Y: 1}
	return nil
}

func (o *Organism) zero(mem *memory.Memory) error {
	r, err := o.regOperand(mem, 1)
	if err != nil {
		return err
	}
	o.Regs[r] = vec.Zero
	return nil
}

// incDec implements both increment and decrement: if the first operand
// is an axis modifier, only that component of the named register
// changes; otherwise both components of the first operand's register
// change.
func (o *Organism) incDec(mem *memory.Memory, delta int) error {
	tok1, ok := o.tokenAt(mem, 1)
	if !ok {
		return errOutOfBounds
	}
	if axis, isAxis := instset.AxisModifier(tok1); isAxis {
		r, err := o.regOperand(mem, 2)
		if err != nil {
			return err
		}
		value, _ := o.Regs[r].Component(axis)
		o.Regs[r] = o.Regs[r].WithComponent(axis, value+delta)
		return nil
	}
	r, ok := instset.RegisterIndex(tok1)
	if !ok {
		return errBadOperand
	}
	o.Regs[r] = o.Regs[r].Add(vec.Vec2{X: delta, Y: delta})
	return nil
}

func (o *Organism) subtract(mem *memory.Memory) error {
	r1, err := o.regOperand(mem, 1)
	if err != nil {
		return err
	}
	r2, err := o.regOperand(mem, 2)
	if err != nil {
		return err
	}
	dst, err := o.regOperand(mem, 3)
	if err != nil {
		return err
	}
	o.Regs[dst] = o.Regs[r1].Sub(o.Regs[r2])
	return nil
}

// ifNotZero evaluates its operand and writes IP directly; Cycle's
// end-of-instruction advance then lands execution one cell past the
// skip distance set here. Net effect for the bare form: a zero operand
// resumes two cells ahead (skipping only the operand token), a nonzero
// operand resumes three ahead (skipping the following instruction).
// The modifier form shifts both landings one further.
func (o *Organism) ifNotZero(mem *memory.Memory) error {
	tok1, ok := o.tokenAt(mem, 1)
	if !ok {
		return errOutOfBounds
	}

	var notZero bool
	var skip int
	if axis, isAxis := instset.AxisModifier(tok1); isAxis {
		r, err := o.regOperand(mem, 2)
		if err != nil {
			return err
		}
		value, _ := o.Regs[r].Component(axis)
		notZero = value != 0
		skip = 1
	} else {
		r, ok := instset.RegisterIndex(tok1)
		if !ok {
			return errBadOperand
		}
		notZero = o.Regs[r].NotZero()
		skip = 0
	}

	if notZero {
		o.IP = o.ipOffset(skip + 2)
	} else {
		o.IP = o.ipOffset(skip + 1)
	}
	return nil
}

func (o *Organism) push(mem *memory.Memory, limits Limits) error {
	r, err := o.regOperand(mem, 1)
	if err != nil {
		return err
	}
	if len(o.Stack) >= limits.StackLen {
		return errFullStack
	}
	o.Stack = append(o.Stack, o.Regs[r])
	return nil
}

func (o *Organism) pop(mem *memory.Memory) error {
	r, err := o.regOperand(mem, 1)
	if err != nil {
		return err
	}
	if len(o.Stack) == 0 {
		return errEmptyStack
	}
	top := o.Stack[len(o.Stack)-1]
	o.Stack = o.Stack[:len(o.Stack)-1]
	o.Regs[r] = top
	return nil
}

// findTemplate reads a maximal run of template characters ('.'/':')
// starting at offset 2, then scans forward for the first contiguous
// occurrence of that run with every character complemented, storing
// the absolute address of the match into the destination register. A
// run of zero template characters is an instruction error; failing to
// find a match within the search budget just leaves the register
// untouched.
func (o *Organism) findTemplate(mem *memory.Memory) error {
	dst, err := o.regOperand(mem, 1)
	if err != nil {
		return err
	}

	maxSteps := o.Size.X
	if o.Size.Y > maxSteps {
		maxSteps = o.Size.Y
	}

	var template []byte
	i := 2
	for ; i < maxSteps; i++ {
		ch, ok := o.tokenAt(mem, i)
		if !ok || !instset.IsTemplateChar(ch) {
			break
		}
		template = append(template, instset.ComplementTemplateChar(ch))
	}
	if len(template) == 0 {
		return errBadTemplate
	}

	counter := 0
	for ; i < maxSteps; i++ {
		ch, ok := o.tokenAt(mem, i)
		if ok && ch == template[counter] {
			counter++
		} else {
			// Restart one cell past where the failed partial match began.
			i -= counter
			counter = 0
		}
		if counter == len(template) {
			o.Regs[dst] = o.ipOffset(i)
			return nil
		}
	}
	return nil
}

func (o *Organism) loadInst(mem *memory.Memory) error {
	src, err := o.regOperand(mem, 1)
	if err != nil {
		return err
	}
	dst, err := o.regOperand(mem, 2)
	if err != nil {
		return err
	}
	addr := o.Regs[src]
	sym, ok := mem.TryCell(addr)
	if !ok {
		return errOutOfBounds
	}
	info, ok := instset.Lookup(sym)
	if !ok {
		return errBadOperand
	}
	o.Regs[dst] = info.Opcode
	return nil
}

// writeInst only has an effect while the organism owns a child region.
// A write attempted with no child outstanding is simply ignored, not
// an instruction failure.
func (o *Organism) writeInst(mem *memory.Memory) error {
	src, err := o.regOperand(mem, 1)
	if err != nil {
		return err
	}
	dst, err := o.regOperand(mem, 2)
	if err != nil {
		return err
	}
	if !o.HasChild() {
		return nil
	}
	addr := o.Regs[src]
	if !mem.InBounds(addr) {
		return errOutOfBounds
	}
	mem.WriteInst(addr, o.Regs[dst])
	return nil
}

// allocateChild scans outward along Delta starting at offset 2 for the
// first free rectangle of the size named by the first operand register
// and allocates it, recording the child's origin into the second
// operand register. The child region's origin is always the corner
// nearest the scan position, whatever direction Delta points.
func (o *Organism) allocateChild(mem *memory.Memory) error {
	sizeReg, err := o.regOperand(mem, 1)
	if err != nil {
		return err
	}
	originReg, err := o.regOperand(mem, 2)
	if err != nil {
		return err
	}

	size := o.Regs[sizeReg]
	if size.X <= 0 || size.Y <= 0 {
		return errBadChildSize
	}

	limit := mem.Rows() + mem.Cols() + 2
	for i := 2; i < limit; i++ {
		candidate := o.ipOffset(i)
		count, ok := mem.IsAllocatedRegion(candidate, size)
		if !ok {
			return errBadChildSize
		}
		if count == 0 {
			o.ChildStart = candidate
			o.Regs[originReg] = candidate
			o.ChildSize = size
			mem.Allocate(candidate, size)
			return nil
		}
	}
	return errBadChildSize
}

// splitChild finishes reproduction: the held child region is
// deallocated (so the new Organism's own construction can reclaim it
// as its body) and a new Organism is appended to the tail of the
// queue. With no child outstanding this is a no-op.
func (o *Organism) splitChild(mem *memory.Memory, q Spawner) error {
	if o.HasChild() {
		mem.Deallocate(o.ChildStart, o.ChildSize)
		// ID 0 is a placeholder: Queue.Add assigns the real, monotonic
		// ID so that organism never needs its own ID-generation state.
		child := New(0, o.ChildStart, o.ChildSize, mem)
		child.ParentID = o.ID
		q.Add(child)
		o.Children++
		o.ReproductionCycle = 0
	}
	o.ChildStart = vec.Zero
	o.ChildSize = vec.Zero
	return nil
}
