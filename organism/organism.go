// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package organism implements the per-creature state and the
// one-instruction-per-cycle interpreter that gives Fungera organisms
// their behavior, including the allocate/copy/split self-replication
// protocol.
package organism

import (
	"github.com/fungera/fungera/instset"
	"github.com/fungera/fungera/memory"
	"github.com/fungera/fungera/vec"
)

// Spawner is the subset of package queue's Queue that Cycle needs in
// order to give birth to (split_child) or remove (self-kill) an
// organism. Organism never imports queue — the engine owns both Memory
// and Queue and passes them down at dispatch time — so the dependency
// runs the other way: queue.Queue implements this interface.
type Spawner interface {
	Add(o *Organism)
	Remove(o *Organism)
}

// Limits bundles the configuration values Cycle needs but that no
// single Organism owns: the shared stack capacity and the self-kill
// thresholds.
type Limits struct {
	StackLen       int
	DeathErrorRate int
	KillIfNoChild  int
}

// Organism is one self-replicating program executing inside Memory.
type Organism struct {
	ID       uint64
	ParentID uint64

	IP    vec.Vec2
	Delta vec.Vec2

	Start vec.Vec2
	Size  vec.Vec2

	ChildStart vec.Vec2
	ChildSize  vec.Vec2

	Regs  [4]vec.Vec2 // a, b, c, d
	Stack []vec.Vec2

	Errors     int
	IsSelected bool

	Children          int
	ReproductionCycle int

	dead bool
}

// New creates an organism whose body occupies [start, start+size) and
// allocates that region in mem. The instruction pointer starts at the
// body's top-left corner, facing right.
func New(id uint64, start, size vec.Vec2, mem *memory.Memory) *Organism {
	o := &Organism{
		ID:    id,
		IP:    start,
		Delta: vec.Right,
		Start: start,
		Size:  size,
	}
	mem.Allocate(start, size)
	return o
}

// IsDead reports whether the organism has been killed. A dead
// organism must already have been removed from the Queue; this flag
// only guards against a behavior function touching it twice in the
// same cycle.
func (o *Organism) IsDead() bool {
	return o.dead
}

// HasChild reports whether the organism currently owns an allocated
// child region.
func (o *Organism) HasChild() bool {
	return !o.ChildSize.IsZero()
}

// ipOffset returns the address offset cells ahead of IP along Delta.
func (o *Organism) ipOffset(offset int) vec.Vec2 {
	return o.IP.Add(o.Delta.Scale(offset))
}

// tokenAt reads the instruction symbol offset cells ahead of IP. Used
// both to fetch the instruction itself (offset 0) and its operand
// tokens (typically offsets 1 and 2).
func (o *Organism) tokenAt(mem *memory.Memory, offset int) (byte, bool) {
	return mem.TryCell(o.ipOffset(offset))
}

// Cycle advances the organism by exactly one instruction: it reads the
// symbol at IP, dispatches the matching behavior, accounts for any
// instruction failure without propagating it, and advances IP. When the
// error or barren-reproduction thresholds in limits are exceeded, the
// organism kills itself in place, removing its own entry from q and
// deallocating its regions.
func (o *Organism) Cycle(mem *memory.Memory, q Spawner, limits Limits) {
	sym, ok := mem.TryCell(o.IP)
	if !ok {
		o.Errors++
	} else if info, known := instset.Lookup(sym); !known {
		o.Errors++
	} else if err := o.dispatch(info.Behavior, mem, q, limits); err != nil {
		o.Errors++
	}
	o.ReproductionCycle++

	if o.Errors > limits.DeathErrorRate || o.ReproductionCycle > limits.KillIfNoChild {
		q.Remove(o)
		o.Kill(mem)
		return
	}

	// The advance applies even after if_not_zero has rewritten IP; the
	// conditional's skip distances account for it. Stall at the grid
	// edge rather than walking IP off the map: an organism facing off
	// the edge keeps re-executing the same instruction until a move
	// changes Delta.
	newIP := o.IP.Add(o.Delta)
	if mem.InBounds(newIP) {
		o.IP = newIP
	}
}

// Kill deallocates the organism's body and any live child region. It
// does not touch the Queue; callers that kill an organism outside of
// Cycle (population-pressure culling) are responsible for removing it
// from the Queue themselves.
func (o *Organism) Kill(mem *memory.Memory) {
	if o.dead {
		return
	}
	mem.Deallocate(o.Start, o.Size)
	if o.HasChild() {
		mem.Deallocate(o.ChildStart, o.ChildSize)
	}
	o.Size = vec.Zero
	o.ChildSize = vec.Zero
	o.ChildStart = vec.Zero
	o.dead = true
}
