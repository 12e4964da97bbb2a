// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package queue holds the ordered collection of living organisms that
// the engine drives one tick at a time. Insertion order is
// reproduction order: a parent always precedes the children it gives
// birth to, and newborns are appended at the tail so they first
// execute on the tick after their birth.
package queue

import (
	"sort"

	"github.com/fungera/fungera/memory"
	"github.com/fungera/fungera/organism"
)

// Queue is an ordered sequence of living organisms plus a "selected"
// cursor used only by an external observer; selection carries no
// semantic weight for the simulation itself.
type Queue struct {
	list     []*organism.Organism
	selected int // index into list, or -1 if empty
	nextID   uint64
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{selected: -1, nextID: 1}
}

// FromOrganisms reconstructs a Queue from a previously-saved organism
// list, selection index, and ID counter, used by package snapshot to
// restore a simulation exactly as it was.
func FromOrganisms(list []*organism.Organism, selected int, nextID uint64) *Queue {
	q := &Queue{list: list, selected: selected, nextID: nextID}
	if len(q.list) == 0 {
		q.selected = -1
	} else if selected >= 0 && selected < len(q.list) {
		q.list[selected].IsSelected = true
	}
	return q
}

// NextID returns the ID the queue would assign to the next organism
// added without an explicit ID. Package snapshot persists this so
// that IDs remain monotonic across a save/load round trip.
func (q *Queue) NextID() uint64 {
	return q.nextID
}

// Len reports the number of living organisms.
func (q *Queue) Len() int {
	return len(q.list)
}

// Organism returns the i'th organism in queue order.
func (q *Queue) Organism(i int) *organism.Organism {
	return q.list[i]
}

// SelectedIndex returns the current selection, or -1 if the queue is
// empty.
func (q *Queue) SelectedIndex() int {
	return q.selected
}

// Add appends org to the tail of the queue. An organism with ID 0 is
// assigned the next monotonic ID; one that already carries an ID keeps
// it, and the counter moves past it. If the queue was empty, org becomes selected — the
// first organism ever added is always the initial ancestor.
func (q *Queue) Add(org *organism.Organism) {
	if org.ID == 0 {
		org.ID = q.nextID
		q.nextID++
	} else if org.ID >= q.nextID {
		q.nextID = org.ID + 1
	}
	if len(q.list) == 0 {
		q.selected = 0
		org.IsSelected = true
	}
	q.list = append(q.list, org)
}

// Remove drops org from the queue. It is a no-op if org is not
// present. Used both by Organism.Cycle's extended-variant self-kill
// and by population-pressure culling.
func (q *Queue) Remove(org *organism.Organism) {
	for i, o := range q.list {
		if o == org {
			q.removeAt(i)
			return
		}
	}
}

func (q *Queue) removeAt(i int) {
	wasSelected := i == q.selected
	q.list[i].IsSelected = false
	q.list = append(q.list[:i], q.list[i+1:]...)

	switch {
	case len(q.list) == 0:
		q.selected = -1
	case q.selected > i || (wasSelected && q.selected >= len(q.list)):
		q.selected = clampIndex(q.selected-1, len(q.list))
		q.list[q.selected].IsSelected = true
	case wasSelected:
		q.list[q.selected].IsSelected = true
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// GetSelected returns the currently selected organism, falling back
// defensively to the first organism in the queue if the selection is
// somehow out of range. It returns nil for an empty queue.
func (q *Queue) GetSelected() *organism.Organism {
	if len(q.list) == 0 {
		return nil
	}
	if q.selected < 0 || q.selected >= len(q.list) {
		return q.list[0]
	}
	return q.list[q.selected]
}

// SelectNext moves the selection cursor forward by one, clamped to
// the last organism.
func (q *Queue) SelectNext() {
	q.moveSelection(1)
}

// SelectPrevious moves the selection cursor back by one, clamped to
// the first organism.
func (q *Queue) SelectPrevious() {
	q.moveSelection(-1)
}

func (q *Queue) moveSelection(delta int) {
	if len(q.list) == 0 {
		return
	}
	q.list[q.selected].IsSelected = false
	q.selected = clampIndex(q.selected+delta, len(q.list))
	q.list[q.selected].IsSelected = true
}

// CycleAll advances every currently-living organism by one
// instruction. It iterates a snapshot of the list taken before any
// organism runs, because split_child mutates the live list; a
// newborn therefore doesn't execute on the tick of its own birth.
func (q *Queue) CycleAll(mem *memory.Memory, limits organism.Limits) {
	snapshot := make([]*organism.Organism, len(q.list))
	copy(snapshot, q.list)
	for _, o := range snapshot {
		if o.IsDead() {
			continue
		}
		o.Cycle(mem, q, limits)
	}
}

// KillWorst kills the ratio*N organisms with the highest error
// counts, deallocating their Memory regions and dropping them from
// the queue; survivors keep their insertion order. This is the
// population-pressure release valve the engine invokes when Memory is
// nearly full.
func (q *Queue) KillWorst(mem *memory.Memory, ratio float64) {
	n := int(float64(len(q.list)) * ratio)
	if n <= 0 {
		return
	}
	if n > len(q.list) {
		n = len(q.list)
	}

	sorted := make([]*organism.Organism, len(q.list))
	copy(sorted, q.list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Errors > sorted[j].Errors
	})

	for _, o := range sorted[:n] {
		o.Kill(mem)
		q.Remove(o)
	}
}
