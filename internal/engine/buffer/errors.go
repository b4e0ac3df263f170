package buffer

import (
	"errors"
	"fmt"
)

// Errors returned by buffer operations.
var (
	// ErrInvalidArgument indicates a negative capacity or an invalid code point.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIndexOutOfBounds indicates an index or range outside the valid
	// bounds for the operation.
	ErrIndexOutOfBounds = errors.New("index out of bounds")

	// ErrCorruptState indicates persisted fields that cannot describe a buffer.
	ErrCorruptState = errors.New("corrupt persisted state")

	// ErrTooLarge is the panic value when growth would exceed MaxCapacity.
	ErrTooLarge = errors.New("buffer: too large")
)

// IndexError describes a rejected index or range.
type IndexError struct {
	Op     string // Operation name, e.g. "charAt"
	Start  int    // Offending index, or range start
	End    int    // Range end; equal to Start for single indexes
	Length int    // Buffer length at the time of the call
	Range  bool   // Whether Start/End describe a range
}

// Error implements error.
func (e *IndexError) Error() string {
	if e.Range {
		return fmt.Sprintf("%s: range [%d, %d) out of bounds for length %d", e.Op, e.Start, e.End, e.Length)
	}
	return fmt.Sprintf("%s: index %d out of bounds for length %d", e.Op, e.Start, e.Length)
}

// Unwrap returns ErrIndexOutOfBounds.
func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfBounds
}

// CorruptStateError describes persisted fields rejected by FromFields.
type CorruptStateError struct {
	Reason string
}

// Error implements error.
func (e *CorruptStateError) Error() string {
	return "corrupt persisted state: " + e.Reason
}

// Unwrap returns ErrCorruptState.
func (e *CorruptStateError) Unwrap() error {
	return ErrCorruptState
}

func indexError(op string, index, length int) error {
	return &IndexError{Op: op, Start: index, End: index, Length: length}
}

func rangeError(op string, start, end, length int) error {
	return &IndexError{Op: op, Start: start, End: end, Length: length, Range: true}
}
