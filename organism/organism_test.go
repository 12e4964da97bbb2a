package organism_test

import (
	"testing"

	"github.com/fungera/fungera/instset"
	"github.com/fungera/fungera/memory"
	"github.com/fungera/fungera/organism"
	"github.com/fungera/fungera/queue"
	"github.com/fungera/fungera/vec"
)

func newMem(t *testing.T) *memory.Memory {
	t.Helper()
	return memory.New(20, 20, 1)
}

func defaultLimits() organism.Limits {
	return organism.Limits{StackLen: 8, DeathErrorRate: 1000, KillIfNoChild: 1000}
}

// place writes line starting at origin along the Y axis into mem.
func place(mem *memory.Memory, origin vec.Vec2, line string) {
	mem.LoadGenome([][]byte{[]byte(line)}, origin)
}

// TestMovement: an organism executing a lone '>' faces right, and its
// IP advances exactly one cell with no error.
func TestMovement(t *testing.T) {
	mem := newMem(t)
	place(mem, vec.Vec2{X: 5, Y: 5}, ">")
	o := organism.New(1, vec.Vec2{X: 5, Y: 5}, vec.Vec2{X: 1, Y: 1}, mem)

	o.Cycle(mem, queue.New(), defaultLimits())

	if o.Delta != vec.Right {
		t.Errorf("Delta = %v, want %v", o.Delta, vec.Right)
	}
	if o.IP != (vec.Vec2{X: 5, Y: 6}) {
		t.Errorf("IP = %v, want (5,6)", o.IP)
	}
	if o.Errors != 0 {
		t.Errorf("Errors = %d, want 0", o.Errors)
	}
}

// TestPushPop: a value pushed from a register and popped back into a
// different one survives unchanged, and the stack ends empty.
func TestPushPop(t *testing.T) {
	mem := newMem(t)
	place(mem, vec.Vec2{X: 0, Y: 0}, "Sa")
	o := organism.New(1, vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 1, Y: 2}, mem)
	o.Regs[0] = vec.Vec2{X: 3, Y: 7} // a

	o.Cycle(mem, queue.New(), defaultLimits()) // push a

	if len(o.Stack) != 1 || o.Stack[0] != (vec.Vec2{X: 3, Y: 7}) {
		t.Fatalf("after push, stack = %v, want [(3,7)]", o.Stack)
	}

	place(mem, vec.Vec2{X: 5, Y: 5}, "Pb")
	o.IP = vec.Vec2{X: 5, Y: 5}
	o.Delta = vec.Right
	o.Cycle(mem, queue.New(), defaultLimits()) // pop b

	if o.Regs[1] != (vec.Vec2{X: 3, Y: 7}) {
		t.Errorf("regs.b = %v, want (3,7)", o.Regs[1])
	}
	if len(o.Stack) != 0 {
		t.Errorf("stack should be empty after pop, got %v", o.Stack)
	}
}

func TestPopEmptyStackIsError(t *testing.T) {
	mem := newMem(t)
	place(mem, vec.Vec2{X: 0, Y: 0}, "Pa")
	o := organism.New(1, vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 1, Y: 2}, mem)

	o.Cycle(mem, queue.New(), defaultLimits())

	if o.Errors != 1 {
		t.Errorf("Errors = %d, want 1 after popping an empty stack", o.Errors)
	}
}

func TestOneZeroIncrement(t *testing.T) {
	mem := newMem(t)
	place(mem, vec.Vec2{X: 0, Y: 0}, "1a")
	o := organism.New(1, vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 1, Y: 2}, mem)
	o.Cycle(mem, queue.New(), defaultLimits())
	if o.Regs[0] != (vec.Vec2{X: 1, Y: 1}) {
		t.Fatalf("after 'one', regs.a = %v, want (1,1)", o.Regs[0])
	}

	place(mem, vec.Vec2{X: 1, Y: 0}, "+a")
	o.IP, o.Delta = vec.Vec2{X: 1, Y: 0}, vec.Right
	o.Cycle(mem, queue.New(), defaultLimits())
	if o.Regs[0] != (vec.Vec2{X: 2, Y: 2}) {
		t.Fatalf("after '+a', regs.a = %v, want (2,2)", o.Regs[0])
	}

	place(mem, vec.Vec2{X: 2, Y: 0}, "+xa")
	o.IP, o.Delta = vec.Vec2{X: 2, Y: 0}, vec.Right
	o.Cycle(mem, queue.New(), defaultLimits())
	if o.Regs[0] != (vec.Vec2{X: 3, Y: 2}) {
		t.Fatalf("after '+xa', regs.a = %v, want (3,2) (only X incremented)", o.Regs[0])
	}

	place(mem, vec.Vec2{X: 3, Y: 0}, "0a")
	o.IP, o.Delta = vec.Vec2{X: 3, Y: 0}, vec.Right
	o.Cycle(mem, queue.New(), defaultLimits())
	if o.Regs[0] != vec.Zero {
		t.Fatalf("after 'zero', regs.a = %v, want (0,0)", o.Regs[0])
	}
}

func TestSubtract(t *testing.T) {
	mem := newMem(t)
	place(mem, vec.Vec2{X: 0, Y: 0}, "~abc")
	o := organism.New(1, vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 1, Y: 4}, mem)
	o.Regs[0] = vec.Vec2{X: 10, Y: 10} // a
	o.Regs[1] = vec.Vec2{X: 3, Y: 4}   // b

	o.Cycle(mem, queue.New(), defaultLimits())

	if o.Regs[2] != (vec.Vec2{X: 7, Y: 6}) {
		t.Errorf("regs.c = %v, want (7,6)", o.Regs[2])
	}
}

func TestIfNotZeroSkipsOneWhenZero(t *testing.T) {
	mem := newMem(t)
	place(mem, vec.Vec2{X: 0, Y: 0}, "?a11")
	o := organism.New(1, vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 1, Y: 4}, mem)
	// regs.a is zero, so the condition is false: the jump plus the
	// end-of-cycle advance leave execution two cells ahead, skipping
	// only the operand token.
	o.Cycle(mem, queue.New(), defaultLimits())
	if o.IP != (vec.Vec2{X: 0, Y: 2}) {
		t.Errorf("IP = %v, want (0,2)", o.IP)
	}
}

func TestIfNotZeroSkipsTwoWhenNonzero(t *testing.T) {
	mem := newMem(t)
	place(mem, vec.Vec2{X: 0, Y: 0}, "?a11")
	o := organism.New(1, vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 1, Y: 4}, mem)
	// A nonzero register lands execution three cells ahead, skipping
	// the instruction that follows the operand.
	o.Regs[0] = vec.Vec2{X: 1, Y: 0}
	o.Cycle(mem, queue.New(), defaultLimits())
	if o.IP != (vec.Vec2{X: 0, Y: 3}) {
		t.Errorf("IP = %v, want (0,3)", o.IP)
	}
}

func TestFindTemplate(t *testing.T) {
	mem := newMem(t)
	// template run: '.' ':' (offsets 2,3), complement ":." ; 'x' at
	// offset 4 stops the run; the complemented pattern ':' '.' then
	// occurs contiguously at offsets 5,6.
	place(mem, vec.Vec2{X: 0, Y: 0}, "&a.:x:.")
	o := organism.New(1, vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 1, Y: 8}, mem)

	o.Cycle(mem, queue.New(), defaultLimits())

	if o.Regs[0] == vec.Zero {
		t.Error("regs.a should hold the matched address, got zero")
	}
}

func TestFindTemplateNoMatchLeavesRegisterUnchanged(t *testing.T) {
	mem := newMem(t)
	place(mem, vec.Vec2{X: 0, Y: 0}, "&a.:x...")
	o := organism.New(1, vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 1, Y: 8}, mem)
	o.Regs[0] = vec.Vec2{X: 9, Y: 9}

	o.Cycle(mem, queue.New(), defaultLimits())

	if o.Regs[0] != (vec.Vec2{X: 9, Y: 9}) {
		t.Errorf("regs.a = %v, should be left unchanged when no match is found", o.Regs[0])
	}
}

func TestFindTemplateEmptyRunIsError(t *testing.T) {
	mem := newMem(t)
	place(mem, vec.Vec2{X: 0, Y: 0}, "&ax")
	o := organism.New(1, vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 1, Y: 3}, mem)

	o.Cycle(mem, queue.New(), defaultLimits())

	if o.Errors != 1 {
		t.Errorf("Errors = %d, want 1 when no template characters follow the operand", o.Errors)
	}
}

func TestLoadInst(t *testing.T) {
	mem := newMem(t)
	place(mem, vec.Vec2{X: 0, Y: 0}, "Lab")
	o := organism.New(1, vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 1, Y: 3}, mem)

	// Point regs.a at a known cell holding '>' and load its encoding.
	mem.LoadGenome([][]byte{[]byte(">")}, vec.Vec2{X: 10, Y: 10})
	o.Regs[0] = vec.Vec2{X: 10, Y: 10}
	o.Cycle(mem, queue.New(), defaultLimits())

	want, _ := instset.Lookup('>')
	if o.Regs[1] != want.Opcode {
		t.Errorf("regs.b = %v, want encoding of '>' = %v", o.Regs[1], want.Opcode)
	}
}

// TestAllocateChildAndSplit: allocating a child region marks it
// allocated and records its origin, and splitting appends a new
// organism to the queue whose body is exactly that region.
func TestAllocateChildAndSplit(t *testing.T) {
	mem := newMem(t)
	place(mem, vec.Vec2{X: 0, Y: 0}, "@ab")
	o := organism.New(1, vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 1, Y: 3}, mem)
	o.Regs[0] = vec.Vec2{X: 1, Y: 3} // a: requested child size

	o.Cycle(mem, queue.New(), defaultLimits()) // allocate_child

	if !o.HasChild() {
		t.Fatal("organism should hold a child region after allocate_child")
	}
	if o.ChildSize != (vec.Vec2{X: 1, Y: 3}) {
		t.Errorf("ChildSize = %v, want (1,3)", o.ChildSize)
	}
	if count, ok := mem.IsAllocatedRegion(o.ChildStart, o.ChildSize); !ok || count != 3 {
		t.Errorf("child region should be fully allocated, count=%d ok=%v", count, ok)
	}
	if o.Regs[1] != o.ChildStart {
		t.Errorf("regs.b = %v, want ChildStart %v", o.Regs[1], o.ChildStart)
	}

	q := queue.New()
	q.Add(o)

	childStart, childSize := o.ChildStart, o.ChildSize
	place(mem, vec.Vec2{X: 5, Y: 0}, "$")
	o.IP, o.Delta = vec.Vec2{X: 5, Y: 0}, vec.Right
	o.Cycle(mem, q, defaultLimits()) // split_child

	if o.HasChild() {
		t.Error("ChildSize should reset to zero after split_child")
	}
	if q.Len() != 2 {
		t.Fatalf("queue should contain parent + child, got %d organisms", q.Len())
	}
	child := q.Organism(1)
	if child.Start != childStart || child.Size != childSize {
		t.Errorf("child Start/Size = %v/%v, want %v/%v", child.Start, child.Size, childStart, childSize)
	}
	if child.ParentID != o.ID {
		t.Errorf("child.ParentID = %d, want %d", child.ParentID, o.ID)
	}
}

func TestAllocateChildRejectsNonPositiveSize(t *testing.T) {
	mem := newMem(t)
	place(mem, vec.Vec2{X: 0, Y: 0}, "@ab")
	o := organism.New(1, vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 1, Y: 3}, mem)
	o.Regs[0] = vec.Zero

	o.Cycle(mem, queue.New(), defaultLimits())

	if o.HasChild() {
		t.Error("a non-positive requested size must not allocate a child")
	}
	if o.Errors != 1 {
		t.Errorf("Errors = %d, want 1", o.Errors)
	}
}

func TestKillDeallocatesBodyAndChild(t *testing.T) {
	mem := newMem(t)
	o := organism.New(1, vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 1, Y: 2}, mem)
	o.ChildStart = vec.Vec2{X: 5, Y: 5}
	o.ChildSize = vec.Vec2{X: 1, Y: 2}
	mem.Allocate(o.ChildStart, o.ChildSize)

	o.Kill(mem)

	if mem.IsAllocated(vec.Vec2{X: 0, Y: 0}) {
		t.Error("body should be deallocated after Kill")
	}
	if mem.IsAllocated(vec.Vec2{X: 5, Y: 5}) {
		t.Error("child region should be deallocated after Kill")
	}
	if !o.IsDead() {
		t.Error("IsDead() should report true after Kill")
	}
}

func TestSelfKillOnErrorThreshold(t *testing.T) {
	mem := newMem(t)
	// A row of pops: each 'P' names the next 'P' as its register
	// operand, which is not a register letter, so every cycle fails.
	place(mem, vec.Vec2{X: 0, Y: 0}, "PPPP")
	o := organism.New(1, vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 1, Y: 1}, mem)
	q := queue.New()
	q.Add(o)
	limits := organism.Limits{StackLen: 8, DeathErrorRate: 2, KillIfNoChild: 1000}

	for i := 0; i < 5 && q.Len() > 0; i++ {
		o.Cycle(mem, q, limits)
	}

	if q.Len() != 0 {
		t.Errorf("organism should have self-killed and left the queue, queue len = %d", q.Len())
	}
}
