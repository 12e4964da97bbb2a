package queue_test

import (
	"testing"

	"github.com/fungera/fungera/memory"
	"github.com/fungera/fungera/organism"
	"github.com/fungera/fungera/queue"
	"github.com/fungera/fungera/vec"
)

func TestAddSelectsFirstOrganism(t *testing.T) {
	mem := memory.New(20, 20, 1)
	q := queue.New()
	o := organism.New(0, vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 1, Y: 1}, mem)
	q.Add(o)

	if q.SelectedIndex() != 0 {
		t.Errorf("SelectedIndex() = %d, want 0", q.SelectedIndex())
	}
	if !o.IsSelected {
		t.Error("first organism added should be selected")
	}
}

func TestInsertionOrderParentBeforeChild(t *testing.T) {
	mem := memory.New(20, 20, 1)
	q := queue.New()
	parent := organism.New(0, vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 1, Y: 2}, mem)
	q.Add(parent)
	child := organism.New(0, vec.Vec2{X: 5, Y: 5}, vec.Vec2{X: 1, Y: 2}, mem)
	q.Add(child)

	if q.Organism(0) != parent || q.Organism(1) != child {
		t.Error("parent must precede child in queue order")
	}
	if parent.ID >= child.ID {
		t.Errorf("parent.ID=%d should be less than child.ID=%d", parent.ID, child.ID)
	}
}

// TestKillWorst: ten organisms with errors 0..9; KillWorst(0.5) must
// leave exactly those with errors in {0,1,2,3,4}, in original
// insertion order, with their bodies still allocated and the killed
// ones deallocated.
func TestKillWorst(t *testing.T) {
	mem := memory.New(20, 20, 1)
	q := queue.New()
	organisms := make([]*organism.Organism, 10)
	for i := 0; i < 10; i++ {
		o := organism.New(0, vec.Vec2{X: i, Y: 0}, vec.Vec2{X: 1, Y: 1}, mem)
		o.Errors = i
		q.Add(o)
		organisms[i] = o
	}

	q.KillWorst(mem, 0.5)

	if q.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", q.Len())
	}
	for i := 0; i < 5; i++ {
		if q.Organism(i) != organisms[i] {
			t.Errorf("survivor %d = organism with errors %d, want %d", i, q.Organism(i).Errors, i)
		}
		if !mem.IsAllocated(organisms[i].Start) {
			t.Errorf("survivor %d's body should remain allocated", i)
		}
	}
	for i := 5; i < 10; i++ {
		if mem.IsAllocated(organisms[i].Start) {
			t.Errorf("killed organism %d's body should be deallocated", i)
		}
	}
}

func TestKillWorstZeroRatioIsNoOp(t *testing.T) {
	mem := memory.New(20, 20, 1)
	q := queue.New()
	q.Add(organism.New(0, vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 1, Y: 1}, mem))
	q.KillWorst(mem, 0)
	if q.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (ratio 0 kills nobody)", q.Len())
	}
}

// TestCycleAllSkipsNewbornsUntilNextTick: CycleAll iterates a
// snapshot of the list, so a child born via split_child during a tick
// is appended to the live queue but does not execute until the
// following tick.
func TestCycleAllSkipsNewbornsUntilNextTick(t *testing.T) {
	mem := memory.New(20, 20, 1)
	q := queue.New()
	mem.LoadGenome([][]byte{[]byte("@ab")}, vec.Vec2{X: 0, Y: 0})
	parent := organism.New(0, vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 1, Y: 3}, mem)
	parent.Regs[0] = vec.Vec2{X: 1, Y: 1}
	q.Add(parent)
	limits := organism.Limits{StackLen: 8, DeathErrorRate: 1000, KillIfNoChild: 1000}

	q.CycleAll(mem, limits) // tick 1: allocate_child

	mem.LoadGenome([][]byte{[]byte("$")}, parent.IP)
	q.CycleAll(mem, limits) // tick 2: split_child appends the newborn

	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 after split", q.Len())
	}
	child := q.Organism(1)
	childStart := child.Start
	if child.IP != childStart {
		t.Fatalf("child.IP = %v, should still equal its Start — it must not run during its birth tick", child.IP)
	}

	q.CycleAll(mem, limits) // tick 3: the child finally runs once

	if child.IP == childStart {
		t.Error("child should have advanced its IP by its first post-birth tick")
	}
}
