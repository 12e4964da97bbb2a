// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package instset implements the fixed, compile-time-known instruction
// set every organism interprets: a static table mapping each printable
// symbol to a 2D opcode coordinate and a behavior tag.
package instset

import "github.com/fungera/fungera/vec"

// Behavior names one of the interpreter's instruction
// implementations: a small tagged value the interpreter switches on
// rather than a name string.
type Behavior byte

// The canonical behavior set, in opcode-table order.
const (
	NoOperation Behavior = iota
	MoveUp
	MoveDown
	MoveRight
	MoveLeft
	FindTemplate
	IfNotZero
	One
	Zero
	Decrement
	Increment
	Subtract
	LoadInst
	WriteInst
	AllocateChild
	SplitChild
	Push
	Pop
)

// Symbol describes one entry of the instruction alphabet: the 2D
// opcode coordinate used by load_inst/write_inst, and the behavior it
// triggers when executed.
type Symbol struct {
	Char     byte
	Opcode   vec.Vec2
	Behavior Behavior
}

// table is the static instruction alphabet. Opcode coordinates group
// related behaviors into rows; load_inst and write_inst move these
// coordinates between registers and cells, so the exact values are
// part of the genome format.
var table = []Symbol{
	{'.', vec.Vec2{X: 0, Y: 0}, NoOperation},
	{':', vec.Vec2{X: 0, Y: 1}, NoOperation},
	{'a', vec.Vec2{X: 1, Y: 0}, NoOperation},
	{'b', vec.Vec2{X: 1, Y: 1}, NoOperation},
	{'c', vec.Vec2{X: 1, Y: 2}, NoOperation},
	{'d', vec.Vec2{X: 1, Y: 3}, NoOperation},
	{'x', vec.Vec2{X: 2, Y: 0}, NoOperation},
	{'y', vec.Vec2{X: 2, Y: 1}, NoOperation},
	{'^', vec.Vec2{X: 3, Y: 0}, MoveUp},
	{'v', vec.Vec2{X: 3, Y: 1}, MoveDown},
	{'>', vec.Vec2{X: 3, Y: 2}, MoveRight},
	{'<', vec.Vec2{X: 3, Y: 3}, MoveLeft},
	{'&', vec.Vec2{X: 4, Y: 0}, FindTemplate},
	{'?', vec.Vec2{X: 5, Y: 0}, IfNotZero},
	{'1', vec.Vec2{X: 6, Y: 0}, One},
	{'0', vec.Vec2{X: 6, Y: 1}, Zero},
	{'-', vec.Vec2{X: 6, Y: 2}, Decrement},
	{'+', vec.Vec2{X: 6, Y: 3}, Increment},
	{'~', vec.Vec2{X: 6, Y: 4}, Subtract},
	{'L', vec.Vec2{X: 7, Y: 0}, LoadInst},
	{'W', vec.Vec2{X: 7, Y: 1}, WriteInst},
	{'@', vec.Vec2{X: 7, Y: 2}, AllocateChild},
	{'$', vec.Vec2{X: 7, Y: 3}, SplitChild},
	{'S', vec.Vec2{X: 8, Y: 0}, Push},
	{'P', vec.Vec2{X: 8, Y: 1}, Pop},
}

var (
	bySymbol map[byte]*Symbol
	byOpcode map[vec.Vec2]*Symbol
	alphabet []byte
)

func init() {
	bySymbol = make(map[byte]*Symbol, len(table))
	byOpcode = make(map[vec.Vec2]*Symbol, len(table))
	alphabet = make([]byte, len(table))
	for i := range table {
		s := &table[i]
		bySymbol[s.Char] = s
		byOpcode[s.Opcode] = s
		alphabet[i] = s.Char
	}
}

// NoOpChar is the symbol a freshly created Memory cell holds.
const NoOpChar = '.'

// Lookup returns the Symbol for a printable instruction character.
func Lookup(ch byte) (Symbol, bool) {
	s, ok := bySymbol[ch]
	if !ok {
		return Symbol{}, false
	}
	return *s, true
}

// ReverseLookup finds the unique symbol whose encoding equals opcode,
// as used by write_inst to turn a register-held encoding back into a
// character to poke into memory.
func ReverseLookup(opcode vec.Vec2) (byte, bool) {
	s, ok := byOpcode[opcode]
	if !ok {
		return 0, false
	}
	return s.Char, true
}

// Alphabet returns every instruction character known to the set, in
// table order. Memory.Cycle uses this to pick a uniformly random
// replacement symbol for a cosmic-ray mutation.
func Alphabet() []byte {
	return alphabet
}

// IsTemplateChar reports whether ch is one of the two template
// alphabet symbols ('.' or ':') find_template matches against.
func IsTemplateChar(ch byte) bool {
	return ch == '.' || ch == ':'
}

// ComplementTemplateChar flips '.' to ':' and vice versa.
func ComplementTemplateChar(ch byte) byte {
	if ch == '.' {
		return ':'
	}
	return '.'
}

// RegisterIndex maps a register-letter token ('a'..'d') to its index
// into an organism's 4-register file. Any other letter is rejected.
func RegisterIndex(ch byte) (int, bool) {
	switch ch {
	case 'a':
		return 0, true
	case 'b':
		return 1, true
	case 'c':
		return 2, true
	case 'd':
		return 3, true
	default:
		return 0, false
	}
}

// AxisModifier maps an axis-modifier token ('x' or 'y') to the vec
// package's axis constant.
func AxisModifier(ch byte) (int, bool) {
	switch ch {
	case 'x':
		return vec.AxisX, true
	case 'y':
		return vec.AxisY, true
	default:
		return 0, false
	}
}
