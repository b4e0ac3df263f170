package buffer

import (
	"fmt"
	"unicode/utf16"
)

// CharSequence is a readable sequence of UTF-16 code units.
// Buffer, Snapshot and Chars implement it.
type CharSequence interface {
	// Len returns the number of code units.
	Len() int
	// CharAt returns the code unit at index.
	CharAt(index int) (uint16, error)
	// String renders the sequence as a Go string.
	String() string
}

// Object is the capability set of values that render to text and compare
// by identity. Buffer satisfies it but never calls it on other values.
type Object interface {
	fmt.Stringer
	Same(other any) bool
}

// Chars is a plain slice of UTF-16 code units used as a CharSequence.
type Chars []uint16

// CharsOf encodes s as UTF-16 code units.
func CharsOf(s string) Chars {
	return Chars(utf16.Encode([]rune(s)))
}

// Len returns the number of code units.
func (c Chars) Len() int {
	return len(c)
}

// CharAt returns the code unit at index.
func (c Chars) CharAt(index int) (uint16, error) {
	if err := checkIndex("charAt", index, len(c)); err != nil {
		return 0, err
	}
	return c[index], nil
}

// String decodes the code units.
func (c Chars) String() string {
	return string(utf16.Decode(c))
}

func (c Chars) allUnits() []uint16 {
	return c
}

func (c Chars) rangeUnits(op string, start, end int) ([]uint16, error) {
	if err := checkRange(op, start, end, len(c)); err != nil {
		return nil, err
	}
	return c[start:end], nil
}

// unitSource is implemented by sequences that can hand over their units in
// one consistent read. Buffer takes its own lock inside these methods, which
// is why callers collect source units before locking the destination.
type unitSource interface {
	allUnits() []uint16
	rangeUnits(op string, start, end int) ([]uint16, error)
}

var nullUnits = []uint16{'n', 'u', 'l', 'l'}

// unitsOf returns the units of seq; a nil seq reads as "null".
// The returned slice may alias seq and must not be retained.
func unitsOf(seq CharSequence) []uint16 {
	if isNil(seq) {
		return nullUnits
	}
	if src, ok := seq.(unitSource); ok {
		return src.allUnits()
	}
	n := seq.Len()
	units := make([]uint16, n)
	for i := range units {
		c, err := seq.CharAt(i)
		if err != nil {
			// The sequence shrank under us; keep what was read.
			return units[:i]
		}
		units[i] = c
	}
	return units
}

// rangeUnitsOf returns seq[start:end]; a nil seq reads as "null".
func rangeUnitsOf(op string, seq CharSequence, start, end int) ([]uint16, error) {
	if isNil(seq) {
		return Chars(nullUnits).rangeUnits(op, start, end)
	}
	if src, ok := seq.(unitSource); ok {
		return src.rangeUnits(op, start, end)
	}
	if err := checkRange(op, start, end, seq.Len()); err != nil {
		return nil, err
	}
	units := make([]uint16, end-start)
	for i := range units {
		c, err := seq.CharAt(start + i)
		if err != nil {
			return nil, err
		}
		units[i] = c
	}
	return units, nil
}

func isNil(seq CharSequence) bool {
	if seq == nil {
		return true
	}
	switch s := seq.(type) {
	case *Buffer:
		return s == nil
	case *Snapshot:
		return s == nil
	}
	return false
}
