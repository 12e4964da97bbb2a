// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package snapshot implements the deterministic binary codec that
// serializes an entire simulation (Memory, Queue and cycle counter) to
// a byte stream and back. The wire format is a fixed little-endian
// header followed by flat arrays; no generic encoding package (gob,
// json) is used, so the format is stable across Go versions and
// entirely under this package's control.
package snapshot

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fungera/fungera/memory"
	"github.com/fungera/fungera/organism"
	"github.com/fungera/fungera/queue"
	"github.com/fungera/fungera/vec"
)

// magic identifies a Fungera snapshot stream; version allows the
// format to evolve without silently misreading an older file.
const (
	magic   = "FNG1"
	version = 1
)

// Write encodes mem, q and cycle to w as a single self-contained byte
// stream.
func Write(w io.Writer, mem *memory.Memory, q *queue.Queue, cycle uint64) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(magic); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(version)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, cycle); err != nil {
		return err
	}

	if err := writeMemory(bw, mem); err != nil {
		return err
	}
	if err := writeQueue(bw, q); err != nil {
		return err
	}

	return bw.Flush()
}

func writeMemory(w *bufio.Writer, mem *memory.Memory) error {
	rows, cols := mem.Rows(), mem.Cols()
	if err := binary.Write(w, binary.LittleEndian, uint32(rows)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(cols)); err != nil {
		return err
	}
	for _, row := range mem.Cells() {
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	allocRow := make([]byte, cols)
	for _, row := range mem.AllocatedGrid() {
		for i, v := range row {
			if v {
				allocRow[i] = 1
			} else {
				allocRow[i] = 0
			}
		}
		if _, err := w.Write(allocRow); err != nil {
			return err
		}
	}

	// The cosmic-ray generator state rides along so a restored run
	// continues the exact mutation sequence the saved run would have
	// produced.
	state, err := mem.RandState()
	if err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(state))); err != nil {
		return err
	}
	_, err = w.Write(state)
	return err
}

func writeQueue(w *bufio.Writer, q *queue.Queue) error {
	n := q.Len()
	if err := binary.Write(w, binary.LittleEndian, uint32(n)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(q.SelectedIndex())); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, q.NextID()); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := writeOrganism(w, q.Organism(i)); err != nil {
			return err
		}
	}
	return nil
}

func writeVec(w *bufio.Writer, v vec.Vec2) error {
	if err := binary.Write(w, binary.LittleEndian, int32(v.X)); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, int32(v.Y))
}

func writeOrganism(w *bufio.Writer, o *organism.Organism) error {
	fields := []uint64{o.ID, o.ParentID}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	for _, v := range []vec.Vec2{o.IP, o.Delta, o.Start, o.Size, o.ChildStart, o.ChildSize} {
		if err := writeVec(w, v); err != nil {
			return err
		}
	}
	for _, r := range o.Regs {
		if err := writeVec(w, r); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(o.Stack))); err != nil {
		return err
	}
	for _, s := range o.Stack {
		if err := writeVec(w, s); err != nil {
			return err
		}
	}
	counters := []uint32{uint32(o.Errors), uint32(o.Children), uint32(o.ReproductionCycle)}
	for _, c := range counters {
		if err := binary.Write(w, binary.LittleEndian, c); err != nil {
			return err
		}
	}
	return nil
}

// Read decodes a snapshot stream produced by Write, returning freshly
// built Memory and Queue instances and the saved cycle counter. On any
// error it returns early without touching caller state — Engine.Load
// only swaps the returned values in on success, so a malformed
// snapshot never leaves a half-decoded simulation in place.
func Read(r io.Reader) (*memory.Memory, *queue.Queue, uint64, error) {
	br := bufio.NewReader(r)

	hdr := make([]byte, len(magic))
	if _, err := io.ReadFull(br, hdr); err != nil {
		return nil, nil, 0, fmt.Errorf("snapshot: read header: %w", err)
	}
	if string(hdr) != magic {
		return nil, nil, 0, fmt.Errorf("snapshot: bad magic %q", hdr)
	}

	var ver uint32
	if err := binary.Read(br, binary.LittleEndian, &ver); err != nil {
		return nil, nil, 0, fmt.Errorf("snapshot: read version: %w", err)
	}
	if ver != version {
		return nil, nil, 0, fmt.Errorf("snapshot: unsupported version %d", ver)
	}

	var cycle uint64
	if err := binary.Read(br, binary.LittleEndian, &cycle); err != nil {
		return nil, nil, 0, fmt.Errorf("snapshot: read cycle: %w", err)
	}

	mem, err := readMemory(br)
	if err != nil {
		return nil, nil, 0, err
	}

	q, err := readQueue(br)
	if err != nil {
		return nil, nil, 0, err
	}

	return mem, q, cycle, nil
}

func readMemory(r *bufio.Reader) (*memory.Memory, error) {
	var rows, cols uint32
	if err := binary.Read(r, binary.LittleEndian, &rows); err != nil {
		return nil, fmt.Errorf("snapshot: read rows: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &cols); err != nil {
		return nil, fmt.Errorf("snapshot: read cols: %w", err)
	}

	cells := make([][]byte, rows)
	for i := range cells {
		cells[i] = make([]byte, cols)
		if _, err := io.ReadFull(r, cells[i]); err != nil {
			return nil, fmt.Errorf("snapshot: read cells row %d: %w", i, err)
		}
	}

	allocated := make([][]bool, rows)
	allocRow := make([]byte, cols)
	for i := range allocated {
		if _, err := io.ReadFull(r, allocRow); err != nil {
			return nil, fmt.Errorf("snapshot: read alloc row %d: %w", i, err)
		}
		row := make([]bool, cols)
		for j, v := range allocRow {
			row[j] = v != 0
		}
		allocated[i] = row
	}

	var stateLen uint32
	if err := binary.Read(r, binary.LittleEndian, &stateLen); err != nil {
		return nil, fmt.Errorf("snapshot: read rng state length: %w", err)
	}
	state := make([]byte, stateLen)
	if _, err := io.ReadFull(r, state); err != nil {
		return nil, fmt.Errorf("snapshot: read rng state: %w", err)
	}

	mem := memory.FromGrid(cells, allocated)
	if err := mem.SetRandState(state); err != nil {
		return nil, fmt.Errorf("snapshot: restore rng state: %w", err)
	}
	return mem, nil
}

func readQueue(r *bufio.Reader) (*queue.Queue, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("snapshot: read organism count: %w", err)
	}
	var selected int32
	if err := binary.Read(r, binary.LittleEndian, &selected); err != nil {
		return nil, fmt.Errorf("snapshot: read selected index: %w", err)
	}
	var nextID uint64
	if err := binary.Read(r, binary.LittleEndian, &nextID); err != nil {
		return nil, fmt.Errorf("snapshot: read next id: %w", err)
	}

	list := make([]*organism.Organism, n)
	for i := range list {
		o, err := readOrganism(r)
		if err != nil {
			return nil, fmt.Errorf("snapshot: read organism %d: %w", i, err)
		}
		list[i] = o
	}

	return queue.FromOrganisms(list, int(selected), nextID), nil
}

func readVec(r *bufio.Reader) (vec.Vec2, error) {
	var x, y int32
	if err := binary.Read(r, binary.LittleEndian, &x); err != nil {
		return vec.Zero, err
	}
	if err := binary.Read(r, binary.LittleEndian, &y); err != nil {
		return vec.Zero, err
	}
	return vec.Vec2{X: int(x), Y: int(y)}, nil
}

func readOrganism(r *bufio.Reader) (*organism.Organism, error) {
	o := &organism.Organism{}

	if err := binary.Read(r, binary.LittleEndian, &o.ID); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &o.ParentID); err != nil {
		return nil, err
	}

	for _, p := range []*vec.Vec2{&o.IP, &o.Delta, &o.Start, &o.Size, &o.ChildStart, &o.ChildSize} {
		v, err := readVec(r)
		if err != nil {
			return nil, err
		}
		*p = v
	}

	for i := range o.Regs {
		v, err := readVec(r)
		if err != nil {
			return nil, err
		}
		o.Regs[i] = v
	}

	var stackLen uint32
	if err := binary.Read(r, binary.LittleEndian, &stackLen); err != nil {
		return nil, err
	}
	o.Stack = make([]vec.Vec2, stackLen)
	for i := range o.Stack {
		v, err := readVec(r)
		if err != nil {
			return nil, err
		}
		o.Stack[i] = v
	}

	var errs, children, reproCycle uint32
	if err := binary.Read(r, binary.LittleEndian, &errs); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &children); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &reproCycle); err != nil {
		return nil, err
	}
	o.Errors = int(errs)
	o.Children = int(children)
	o.ReproductionCycle = int(reproCycle)

	return o, nil
}
