package buffer

import (
	"math"
	"slices"
	"sync"
	"unicode/utf16"
)

const (
	// DefaultCapacity is the capacity of a buffer created by New.
	DefaultCapacity = 16

	// SeedSlack is the spare capacity added past a seed sequence.
	SeedSlack = 16

	// MaxCapacity is the largest capacity a buffer may reach. The persisted
	// count field is an int32, and some encoders reserve header words.
	MaxCapacity = math.MaxInt32 - 8

	// NotFound is returned by the index searches when there is no match.
	NotFound = -1
)

// Buffer is a mutable sequence of UTF-16 code units.
// All methods are thread-safe.
type Buffer struct {
	mu     sync.Mutex
	value  []uint16
	count  int
	cache  string
	cached bool
}

// New creates an empty buffer with DefaultCapacity.
func New() *Buffer {
	return &Buffer{value: make([]uint16, DefaultCapacity)}
}

// NewWithCapacity creates an empty buffer with the given capacity.
// Returns ErrInvalidArgument if capacity is negative.
func NewWithCapacity(capacity int) (*Buffer, error) {
	if capacity < 0 || capacity > MaxCapacity {
		return nil, ErrInvalidArgument
	}
	return &Buffer{value: make([]uint16, capacity)}, nil
}

// NewString creates a buffer holding s, with SeedSlack spare capacity.
func NewString(s string) *Buffer {
	return fromUnits(CharsOf(s))
}

// NewSequence creates a buffer holding a copy of seq, with SeedSlack
// spare capacity. A nil seq is seeded as "null".
func NewSequence(seq CharSequence) *Buffer {
	return fromUnits(unitsOf(seq))
}

func fromUnits(units []uint16) *Buffer {
	b := &Buffer{value: make([]uint16, len(units)+SeedSlack)}
	b.count = copy(b.value, units)
	return b
}

// Len returns the number of code units in the buffer.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Cap returns the allocated capacity in code units.
func (b *Buffer) Cap() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.value)
}

// IsEmpty returns true if the buffer holds no code units.
func (b *Buffer) IsEmpty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count == 0
}

// EnsureCapacity grows the buffer so that Cap() >= min.
// Growth allocates max(min, 2*Cap()+2) units. Non-positive min is a no-op.
func (b *Buffer) EnsureCapacity(min int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if min > 0 {
		b.ensureCapacityLocked(min)
	}
}

// TrimToSize releases spare capacity so that Cap() == Len().
func (b *Buffer) TrimToSize() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.value) > b.count {
		trimmed := make([]uint16, b.count)
		copy(trimmed, b.value[:b.count])
		b.value = trimmed
	}
}

// SetLength sets the logical length. Units exposed by growing the length
// are NUL. Returns ErrIndexOutOfBounds if n is negative.
func (b *Buffer) SetLength(n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n < 0 {
		return indexError("setLength", n, b.count)
	}
	b.ensureCapacityLocked(n)
	if n > b.count {
		clear(b.value[b.count:n])
	}
	b.count = n
	b.invalidate()
	return nil
}

// Reset empties the buffer, keeping its capacity.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.count = 0
	b.invalidate()
}

// String returns the buffer content. The result is cached until the next
// mutation. Unpaired surrogates render as U+FFFD.
func (b *Buffer) String() string {
	if b == nil {
		return "null"
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.cached {
		b.cache = string(utf16.Decode(b.value[:b.count]))
		b.cached = true
	}
	return b.cache
}

// Chars returns a copy of the code units in the buffer.
func (b *Buffer) Chars() []uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]uint16, b.count)
	copy(out, b.value[:b.count])
	return out
}

// Snapshot returns an immutable copy of the current content.
func (b *Buffer) Snapshot() *Snapshot {
	return &Snapshot{units: b.Chars()}
}

// Same reports whether other is this very buffer.
func (b *Buffer) Same(other any) bool {
	o, ok := other.(*Buffer)
	return ok && o == b
}

// Equal reports whether the buffer holds exactly the units of seq.
// A nil seq is equal to nothing, not even a buffer holding "null".
func (b *Buffer) Equal(seq CharSequence) bool {
	if isNil(seq) {
		return false
	}
	other := unitsOf(seq)
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Equal(b.value[:b.count], other)
}

// Compare orders two buffers lexicographically by code unit.
// It returns -1, 0 or +1. A nil other sorts before every buffer.
func (b *Buffer) Compare(other *Buffer) int {
	if b == other {
		return 0
	}
	if other == nil {
		return 1
	}
	theirs := unitsOf(other)
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Compare(b.value[:b.count], theirs)
}

func (b *Buffer) allUnits() []uint16 {
	return b.Chars()
}

func (b *Buffer) rangeUnits(op string, start, end int) ([]uint16, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := checkRange(op, start, end, b.count); err != nil {
		return nil, err
	}
	out := make([]uint16, end-start)
	copy(out, b.value[start:end])
	return out, nil
}

// invalidate drops the cached rendering. Callers hold b.mu.
func (b *Buffer) invalidate() {
	b.cache = ""
	b.cached = false
}

// ensureCapacityLocked grows value to hold at least min units.
func (b *Buffer) ensureCapacityLocked(min int) {
	if min <= len(b.value) {
		return
	}
	if min > MaxCapacity {
		panic(ErrTooLarge)
	}
	grown := make([]uint16, newCapacity(len(b.value), min))
	copy(grown, b.value[:b.count])
	b.value = grown
}

// newCapacity returns max(min, 2*current+2), capped at MaxCapacity.
func newCapacity(current, min int) int {
	n := current*2 + 2
	if n > MaxCapacity || n < 0 {
		n = MaxCapacity
	}
	if n < min {
		n = min
	}
	return n
}
