package buffer

import (
	"unicode/utf16"
)

// Snapshot provides a read-only copy of buffer content.
// It is safe for concurrent access and will not change even if the original
// buffer is modified.
type Snapshot struct {
	units []uint16
}

// Len returns the number of code units.
func (s *Snapshot) Len() int {
	return len(s.units)
}

// CharAt returns the code unit at index.
func (s *Snapshot) CharAt(index int) (uint16, error) {
	if err := checkIndex("charAt", index, len(s.units)); err != nil {
		return 0, err
	}
	return s.units[index], nil
}

// CodePointAt returns the code point starting at index.
func (s *Snapshot) CodePointAt(index int) (rune, error) {
	if err := checkIndex("codePointAt", index, len(s.units)); err != nil {
		return 0, err
	}
	return codePointAt(s.units, index), nil
}

// SubSequence returns the snapshot restricted to [start, end).
// The result shares the immutable storage.
func (s *Snapshot) SubSequence(start, end int) (*Snapshot, error) {
	if err := checkRange("subSequence", start, end, len(s.units)); err != nil {
		return nil, err
	}
	return &Snapshot{units: s.units[start:end:end]}, nil
}

// String decodes the snapshot.
func (s *Snapshot) String() string {
	if s == nil {
		return "null"
	}
	return string(utf16.Decode(s.units))
}

// IsEmpty returns true if the snapshot is empty.
func (s *Snapshot) IsEmpty() bool {
	return len(s.units) == 0
}

// Chars returns a copy of the snapshot's code units.
func (s *Snapshot) Chars() []uint16 {
	out := make([]uint16, len(s.units))
	copy(out, s.units)
	return out
}

func (s *Snapshot) allUnits() []uint16 {
	return s.units
}

func (s *Snapshot) rangeUnits(op string, start, end int) ([]uint16, error) {
	if err := checkRange(op, start, end, len(s.units)); err != nil {
		return nil, err
	}
	return s.units[start:end], nil
}
