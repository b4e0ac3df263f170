package persist

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// DeepCopy returns a copy of v that shares no reachable state with it.
// v is round-tripped through encoding/gob, so every reachable field must be
// exported or implement encoding.BinaryMarshaler (as *buffer.Buffer does).
// A plain assignment is the shallow alternative: nested pointers stay
// shared.
func DeepCopy[T any](v T) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("deep copy: %v", r)
		}
	}()

	var network bytes.Buffer
	if err := gob.NewEncoder(&network).Encode(v); err != nil {
		return out, fmt.Errorf("deep copy encode: %w", err)
	}
	if err := gob.NewDecoder(&network).Decode(&out); err != nil {
		return out, fmt.Errorf("deep copy decode: %w", err)
	}
	return out, nil
}
