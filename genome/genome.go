// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package genome loads the plain-text ancestor genome file that seeds
// a fresh simulation: one row per line, one instruction symbol per
// character. Genome width and height are inferred from the file
// itself.
package genome

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// Load reads a genome file from path and returns it as a rectangular
// grid of instruction symbols, one row per line. All lines must have
// the same length; a ragged file is rejected rather than silently
// padded, since a mismatched width would desync the self-replication
// template logic in subtle ways.
func Load(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("genome: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a genome from r, applying the same validation as Load.
func Parse(r io.Reader) ([][]byte, error) {
	var grid [][]byte
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := bytes.TrimRight(scanner.Bytes(), "\r")
		if len(line) == 0 {
			continue
		}
		row := make([]byte, len(line))
		copy(row, line)
		grid = append(grid, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("genome: %w", err)
	}
	if len(grid) == 0 {
		return nil, fmt.Errorf("genome: empty genome file")
	}
	width := len(grid[0])
	for i, row := range grid {
		if len(row) != width {
			return nil, fmt.Errorf("genome: line %d has length %d, want %d", i+1, len(row), width)
		}
	}
	return grid, nil
}
