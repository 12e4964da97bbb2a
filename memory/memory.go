// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package memory owns the 2D character grid every organism executes
// in, the parallel allocation bitmap that tracks which cells are
// claimed as an organism's body or child region, and the periodic
// "cosmic ray" mutation that keeps the simulation from going stale.
// Memory is deliberately ignorant of organisms: it is a substrate, not
// a bookkeeper.
package memory

import (
	"math/rand/v2"

	"github.com/fungera/fungera/instset"
	"github.com/fungera/fungera/vec"
)

// Memory is a dense rows x cols grid of instruction symbols plus a
// same-shaped allocation bitmap.
type Memory struct {
	rows, cols int
	cells      [][]byte
	allocated  [][]bool
	pcg        *rand.PCG
	rng        *rand.Rand
}

// New creates a Memory of the given size, every cell initialized to
// the no-op symbol. The cosmic-ray generator is seeded from seed so
// that two runs with identical seeds mutate identically.
func New(rows, cols int, seed int64) *Memory {
	m := &Memory{
		rows: rows,
		cols: cols,
	}
	m.pcg = rand.NewPCG(uint64(seed), uint64(seed))
	m.rng = rand.New(m.pcg)
	m.cells = make([][]byte, rows)
	m.allocated = make([][]bool, rows)
	for r := 0; r < rows; r++ {
		m.cells[r] = make([]byte, cols)
		for c := range m.cells[r] {
			m.cells[r][c] = instset.NoOpChar
		}
		m.allocated[r] = make([]bool, cols)
	}
	return m
}

// FromGrid reconstructs a Memory from a previously-saved cell grid and
// allocation bitmap, used by package snapshot to restore a simulation
// exactly as it was. The two grids must have identical dimensions;
// callers restore the cosmic-ray generator separately with
// SetRandState.
func FromGrid(cells [][]byte, allocated [][]bool) *Memory {
	m := &Memory{
		rows:      len(cells),
		cols:      len(cells[0]),
		cells:     cells,
		allocated: allocated,
	}
	m.pcg = rand.NewPCG(0, 0)
	m.rng = rand.New(m.pcg)
	return m
}

// RandState returns the cosmic-ray generator's internal state, so a
// snapshot can resume the exact mutation sequence the saved run would
// have produced.
func (m *Memory) RandState() ([]byte, error) {
	return m.pcg.MarshalBinary()
}

// SetRandState restores a generator state previously captured with
// RandState.
func (m *Memory) SetRandState(state []byte) error {
	return m.pcg.UnmarshalBinary(state)
}

// Cells returns the live cell grid. Callers must not retain it across
// mutations of Memory; package snapshot copies it immediately into the
// encoded stream.
func (m *Memory) Cells() [][]byte {
	return m.cells
}

// AllocatedGrid returns the live allocation bitmap, with the same
// aliasing caveat as Cells.
func (m *Memory) AllocatedGrid() [][]bool {
	return m.allocated
}

// Rows and Cols return the grid dimensions.
func (m *Memory) Rows() int { return m.rows }
func (m *Memory) Cols() int { return m.cols }

// InBounds reports whether addr lies within the grid.
func (m *Memory) InBounds(addr vec.Vec2) bool {
	return addr.X >= 0 && addr.X < m.rows && addr.Y >= 0 && addr.Y < m.cols
}

// regionInBounds reports whether the whole rectangle [addr, addr+size)
// lies within the grid. A non-positive size is never in bounds.
func (m *Memory) regionInBounds(addr, size vec.Vec2) bool {
	if size.X <= 0 || size.Y <= 0 {
		return false
	}
	return addr.X >= 0 && addr.Y >= 0 &&
		addr.X+size.X <= m.rows && addr.Y+size.Y <= m.cols
}

// Cell returns the symbol at addr. Callers that cannot guarantee addr
// is in bounds should use TryCell instead; Cell is total only over the
// grid's own domain and returns the no-op symbol for any address
// outside it.
func (m *Memory) Cell(addr vec.Vec2) byte {
	sym, ok := m.TryCell(addr)
	if !ok {
		return instset.NoOpChar
	}
	return sym
}

// TryCell reads the symbol at addr, reporting ok=false ("unknown")
// when addr is out of bounds. This is the checked read every
// instruction in package organism uses, so that a stray IP never
// panics the simulation — it just fails the instruction.
func (m *Memory) TryCell(addr vec.Vec2) (sym byte, ok bool) {
	if !m.InBounds(addr) {
		return 0, false
	}
	return m.cells[addr.X][addr.Y], true
}

// LoadGenome blits a rectangular subgrid into Memory starting at
// origin. It does not mark the region as allocated; allocation is the
// caller's responsibility, paired with creating the Organism that owns
// it.
func (m *Memory) LoadGenome(grid [][]byte, origin vec.Vec2) bool {
	rows := len(grid)
	if rows == 0 {
		return true
	}
	cols := len(grid[0])
	if !m.regionInBounds(origin, vec.Vec2{X: rows, Y: cols}) {
		return false
	}
	for r, line := range grid {
		copy(m.cells[origin.X+r][origin.Y:origin.Y+cols], line)
	}
	return true
}

// Allocate marks every cell in [addr, addr+size) as allocated.
func (m *Memory) Allocate(addr, size vec.Vec2) {
	m.setRegion(addr, size, true)
}

// Deallocate clears every cell in [addr, addr+size). It is lenient:
// a rectangle that escapes the grid is silently clipped rather than
// rejected, since end-of-life cleanup may be partially out of bounds.
func (m *Memory) Deallocate(addr, size vec.Vec2) {
	m.setRegion(addr, size, false)
}

func (m *Memory) setRegion(addr, size vec.Vec2, value bool) {
	r0, r1 := clampRange(addr.X, addr.X+size.X, m.rows)
	c0, c1 := clampRange(addr.Y, addr.Y+size.Y, m.cols)
	for r := r0; r < r1; r++ {
		row := m.allocated[r]
		for c := c0; c < c1; c++ {
			row[c] = value
		}
	}
}

func clampRange(lo, hi, max int) (int, int) {
	if lo < 0 {
		lo = 0
	}
	if hi > max {
		hi = max
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// IsAllocated probes a single cell.
func (m *Memory) IsAllocated(addr vec.Vec2) bool {
	if !m.InBounds(addr) {
		return false
	}
	return m.allocated[addr.X][addr.Y]
}

// IsAllocatedRegion reports how many cells within [addr, addr+size)
// are currently allocated. ok is false if the rectangle escapes the
// grid's bounds; zero count with ok=true means the whole rectangle is
// free and safe to take.
func (m *Memory) IsAllocatedRegion(addr, size vec.Vec2) (count int, ok bool) {
	if !m.regionInBounds(addr, size) {
		return 0, false
	}
	for r := addr.X; r < addr.X+size.X; r++ {
		row := m.allocated[r]
		for c := addr.Y; c < addr.Y+size.Y; c++ {
			if row[c] {
				count++
			}
		}
	}
	return count, true
}

// WriteInst finds the unique symbol whose encoding equals opcode and
// writes it at addr. If no such symbol exists, or addr is out of
// bounds, the write is a no-op.
func (m *Memory) WriteInst(addr vec.Vec2, opcode vec.Vec2) {
	if !m.InBounds(addr) {
		return
	}
	ch, ok := instset.ReverseLookup(opcode)
	if !ok {
		return
	}
	m.cells[addr.X][addr.Y] = ch
}

// IsTimeToKill reports whether the memory grid is full enough that
// the population should be culled: allocated_cells / free_cells >
// fullRatio. When memory is exactly full (zero free cells) this is
// defined as true rather than dividing by zero.
func (m *Memory) IsTimeToKill(fullRatio float64) bool {
	allocated, free := m.allocationCounts()
	if free == 0 {
		return true
	}
	return float64(allocated)/float64(free) > fullRatio
}

func (m *Memory) allocationCounts() (allocated, free int) {
	for _, row := range m.allocated {
		for _, v := range row {
			if v {
				allocated++
			} else {
				free++
			}
		}
	}
	return allocated, free
}

// Cycle selects one uniformly random cell and overwrites it with a
// uniformly random instruction symbol: a single cosmic ray, driven by
// the engine on a configured cadence.
func (m *Memory) Cycle() {
	addr := vec.Vec2{X: m.rng.IntN(m.rows), Y: m.rng.IntN(m.cols)}
	alphabet := instset.Alphabet()
	m.cells[addr.X][addr.Y] = alphabet[m.rng.IntN(len(alphabet))]
}
