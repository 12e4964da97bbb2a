// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vec implements the two-dimensional integer vector used
// throughout Fungera to address memory cells and to hold organism
// register values. The same type serves both roles, exactly as the
// simulator's reference semantics require: an address, a direction and
// a register value are all just a pair of ints.
package vec

// Axis names used by the instruction set's modifier tokens.
const (
	AxisX = 0
	AxisY = 1
)

// Vec2 is a two-dimensional integer vector.
type Vec2 struct {
	X int
	Y int
}

// Zero is the zero vector.
var Zero = Vec2{}

// Unit vectors for the four cardinal directions an organism can face.
var (
	Up    = Vec2{X: -1, Y: 0}
	Down  = Vec2{X: 1, Y: 0}
	Left  = Vec2{X: 0, Y: -1}
	Right = Vec2{X: 0, Y: 1}
)

// Add returns v+w.
func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns v-w.
func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{X: v.X - w.X, Y: v.Y - w.Y}
}

// Scale returns v scaled by n.
func (v Vec2) Scale(n int) Vec2 {
	return Vec2{X: v.X * n, Y: v.Y * n}
}

// IsZero reports whether both components are zero.
func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// NotZero reports whether any component is nonzero. This is the
// "truthiness" test used by the if_not_zero instruction, which treats
// a whole register as "not zero" when either component is nonzero.
func (v Vec2) NotZero() bool {
	return !v.IsZero()
}

// Component returns the value along the given axis (AxisX or AxisY).
// Any other axis value reports ok=false.
func (v Vec2) Component(axis int) (value int, ok bool) {
	switch axis {
	case AxisX:
		return v.X, true
	case AxisY:
		return v.Y, true
	default:
		return 0, false
	}
}

// WithComponent returns a copy of v with the given axis set to value.
func (v Vec2) WithComponent(axis int, value int) Vec2 {
	switch axis {
	case AxisX:
		v.X = value
	case AxisY:
		v.Y = value
	}
	return v
}
