// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package engine owns Memory and Queue, drives the simulation one
// tick at a time, and exposes the read-only observation surface and
// save/load commands an external UI collaborator needs. Engine is the
// only place Memory and Queue are passed together to an Organism: the
// core never threads back-pointers through the organisms themselves.
package engine

import (
	"fmt"
	"io"

	"github.com/fungera/fungera/memory"
	"github.com/fungera/fungera/organism"
	"github.com/fungera/fungera/queue"
	"github.com/fungera/fungera/snapshot"
	"github.com/fungera/fungera/vec"
)

// Config bundles every tunable value an Engine needs.
type Config struct {
	MemoryRows int
	MemoryCols int

	RandomRate         int
	CycleGap           int
	MemoryFullRatio    float64
	KillOrganismsRatio float64
	StackLength        int
	RandomSeed         int64

	OrganismDeathRate int
	KillIfNoChild     int
}

// Engine owns the memory substrate, the organism queue, and the
// monotonic cycle counter, and cycles them together one tick at a
// time under external drive.
type Engine struct {
	mem     *memory.Memory
	q       *queue.Queue
	cfg     Config
	cycle   uint64
	running bool
	minimal bool
}

// New constructs an Engine with a freshly allocated Memory of the
// configured size and an empty Queue. Callers then call LoadGenome to
// seed the initial ancestor.
func New(cfg Config) *Engine {
	return &Engine{
		mem: memory.New(cfg.MemoryRows, cfg.MemoryCols, cfg.RandomSeed),
		q:   queue.New(),
		cfg: cfg,
	}
}

// LoadGenome blits grid into Memory centered at (rows/2, cols/2),
// allocates the region, and constructs the initial ancestor Organism
// pointing at it. It returns the origin the genome was placed at.
func (e *Engine) LoadGenome(grid [][]byte) (vec.Vec2, error) {
	if len(grid) == 0 {
		return vec.Zero, fmt.Errorf("engine: empty genome")
	}
	size := vec.Vec2{X: len(grid), Y: len(grid[0])}
	origin := vec.Vec2{
		X: e.mem.Rows()/2 - size.X/2,
		Y: e.mem.Cols()/2 - size.Y/2,
	}
	if !e.mem.LoadGenome(grid, origin) {
		return vec.Zero, fmt.Errorf("engine: genome of size %v does not fit at origin %v", size, origin)
	}
	ancestor := organism.New(0, origin, size, e.mem)
	e.q.Add(ancestor)
	return origin, nil
}

// limits derives the organism.Limits the interpreter needs from cfg.
func (e *Engine) limits() organism.Limits {
	return organism.Limits{
		StackLen:       e.cfg.StackLength,
		DeathErrorRate: e.cfg.OrganismDeathRate,
		KillIfNoChild:  e.cfg.KillIfNoChild,
	}
}

// Step advances the simulation by exactly one tick: apply a cosmic
// ray on the configured cadence, cull the population if memory is
// nearly full on the configured cadence, cycle every living organism
// once, then advance the cycle counter. Step always runs to
// completion — pausing is the driver's responsibility, not the
// engine's.
func (e *Engine) Step() {
	if e.cfg.RandomRate > 0 && e.cycle%uint64(e.cfg.RandomRate) == 0 {
		e.mem.Cycle()
	}
	if e.cfg.CycleGap > 0 && e.cycle%uint64(e.cfg.CycleGap) == 0 && e.mem.IsTimeToKill(e.cfg.MemoryFullRatio) {
		e.q.KillWorst(e.mem, e.cfg.KillOrganismsRatio)
	}
	e.q.CycleAll(e.mem, e.limits())
	e.cycle++
}

// KillAllWorst forces an immediate population-pressure cull, bypassing
// the memory-fullness check. It is exposed to the driver as a manual
// command.
func (e *Engine) KillAllWorst() {
	e.q.KillWorst(e.mem, e.cfg.KillOrganismsRatio)
}

// Cycle returns the monotonic tick counter.
func (e *Engine) Cycle() uint64 { return e.cycle }

// Running reports whether the driver currently intends to keep
// stepping the engine. The flag is observational only; Step ignores
// it.
func (e *Engine) Running() bool { return e.running }

// SetRunning sets the running flag a driver checks before calling Step
// in a loop.
func (e *Engine) SetRunning(running bool) { e.running = running }

// Minimal reports whether the engine is in UI-bypass ("headless")
// mode. It has no effect on simulation semantics; it exists purely so
// an external observer can decide whether to render.
func (e *Engine) Minimal() bool { return e.minimal }

// SetMinimal toggles headless mode.
func (e *Engine) SetMinimal(minimal bool) { e.minimal = minimal }

// Memory exposes the read-only observation surface over the memory
// substrate.
func (e *Engine) Memory() *memory.Memory { return e.mem }

// Queue exposes the read-only observation surface over the organism
// collection.
func (e *Engine) Queue() *queue.Queue { return e.q }

// SelectNext and SelectPrevious move the queue's UI selection cursor.
func (e *Engine) SelectNext()     { e.q.SelectNext() }
func (e *Engine) SelectPrevious() { e.q.SelectPrevious() }

// Save serializes the full simulation state to w.
func (e *Engine) Save(w io.Writer) error {
	return snapshot.Write(w, e.mem, e.q, e.cycle)
}

// Load replaces the engine's Memory and Queue with the state decoded
// from r. The codec builds fresh structures and only swaps them into
// the engine on complete success, so a malformed snapshot leaves the
// running simulation untouched.
func (e *Engine) Load(r io.Reader) error {
	mem, q, cycle, err := snapshot.Read(r)
	if err != nil {
		return err
	}
	e.mem = mem
	e.q = q
	e.cycle = cycle
	return nil
}
