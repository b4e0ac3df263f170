package persist

import (
	"fmt"
	"io"

	"github.com/dshills/charbuf/internal/engine/buffer"
)

// Binary is the compact big-endian codec defined by buffer.Fields.MarshalBinary.
var Binary Codec = binaryCodec{}

type binaryCodec struct{}

func (binaryCodec) Name() string { return "binary" }

func (binaryCodec) Encode(w io.Writer, f buffer.Fields) error {
	data, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing binary buffer: %w", err)
	}
	return nil
}

func (binaryCodec) Decode(r io.Reader) (buffer.Fields, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return buffer.Fields{}, fmt.Errorf("reading binary buffer: %w", err)
	}
	var f buffer.Fields
	if err := f.UnmarshalBinary(data); err != nil {
		return buffer.Fields{}, err
	}
	return f, nil
}
