package buffer

import (
	"encoding/binary"
	"fmt"
)

// Fields is the persisted form of a Buffer. Value is the whole storage
// array, so len(Value) is the capacity, and Count is the logical length.
// The rendering cache is never persisted.
//
// Encoders also emit a "shared" flag, always false, for compatibility with
// the legacy three-field layout. It carries no meaning and is ignored when
// decoding, so it has no field here.
type Fields struct {
	Value []uint16
	Count int32
}

// Validate reports whether f describes a buffer.
func (f Fields) Validate() error {
	switch {
	case f.Value == nil:
		return &CorruptStateError{Reason: "missing value"}
	case f.Count < 0:
		return &CorruptStateError{Reason: fmt.Sprintf("negative count %d", f.Count)}
	case int(f.Count) > len(f.Value):
		return &CorruptStateError{Reason: fmt.Sprintf("count %d exceeds value length %d", f.Count, len(f.Value))}
	case len(f.Value) > MaxCapacity:
		return &CorruptStateError{Reason: fmt.Sprintf("value length %d exceeds maximum capacity", len(f.Value))}
	}
	return nil
}

// Fields returns the persisted form of the buffer. Value is a copy.
func (b *Buffer) Fields() Fields {
	b.mu.Lock()
	defer b.mu.Unlock()
	value := make([]uint16, len(b.value))
	copy(value, b.value)
	return Fields{Value: value, Count: int32(b.count)}
}

// FromFields rebuilds a buffer from its persisted form. The buffer gets its
// own copy of f.Value. Returns an error wrapping ErrCorruptState if f does
// not validate.
func FromFields(f Fields) (*Buffer, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	value := make([]uint16, len(f.Value))
	copy(value, f.Value)
	return &Buffer{value: value, count: int(f.Count)}, nil
}

// Binary layout:
//
//	magic    [4]byte  "CBUF"
//	version  uint8    1
//	shared   uint8    always 0, ignored on read
//	count    int32    big endian
//	capacity int32    big endian
//	value    capacity x uint16, big endian
const (
	binaryMagic   = "CBUF"
	binaryVersion = 1
	headerSize    = 4 + 1 + 1 + 4 + 4
)

// MarshalBinary encodes f in the binary layout.
func (f Fields) MarshalBinary() ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	data := make([]byte, 0, headerSize+2*len(f.Value))
	data = append(data, binaryMagic...)
	data = append(data, binaryVersion, 0)
	data = binary.BigEndian.AppendUint32(data, uint32(f.Count))
	data = binary.BigEndian.AppendUint32(data, uint32(len(f.Value)))
	for _, c := range f.Value {
		data = binary.BigEndian.AppendUint16(data, c)
	}
	return data, nil
}

// UnmarshalBinary decodes the binary layout into f.
func (f *Fields) UnmarshalBinary(data []byte) error {
	if len(data) < headerSize {
		return &CorruptStateError{Reason: fmt.Sprintf("truncated header: %d bytes", len(data))}
	}
	if string(data[:4]) != binaryMagic {
		return &CorruptStateError{Reason: fmt.Sprintf("bad magic %q", data[:4])}
	}
	if data[4] != binaryVersion {
		return &CorruptStateError{Reason: fmt.Sprintf("unsupported version %d", data[4])}
	}
	// data[5] is the shared flag.
	count := int32(binary.BigEndian.Uint32(data[6:10]))
	capacity := int32(binary.BigEndian.Uint32(data[10:14]))
	if capacity < 0 {
		return &CorruptStateError{Reason: fmt.Sprintf("negative capacity %d", capacity)}
	}
	body := data[headerSize:]
	if len(body) != 2*int(capacity) {
		return &CorruptStateError{Reason: fmt.Sprintf("value holds %d bytes, want %d", len(body), 2*int(capacity))}
	}

	value := make([]uint16, capacity)
	for i := range value {
		value[i] = binary.BigEndian.Uint16(body[2*i:])
	}
	decoded := Fields{Value: value, Count: count}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*f = decoded
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler. encoding/gob uses it,
// so structs holding a *Buffer can be deep-copied through gob.
func (b *Buffer) MarshalBinary() ([]byte, error) {
	return b.Fields().MarshalBinary()
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. On error the
// buffer is left unchanged.
func (b *Buffer) UnmarshalBinary(data []byte) error {
	var f Fields
	if err := f.UnmarshalBinary(data); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.value = f.Value
	b.count = int(f.Count)
	b.invalidate()
	return nil
}
