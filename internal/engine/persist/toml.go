package persist

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/charbuf/internal/engine/buffer"
)

// TOML writes top-level value, count and shared keys.
var TOML Codec = tomlCodec{}

type tomlCodec struct{}

func (tomlCodec) Name() string { return "toml" }

func (tomlCodec) Encode(w io.Writer, f buffer.Fields) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if err := toml.NewEncoder(w).Encode(newDocument(f)); err != nil {
		return fmt.Errorf("encoding toml buffer: %w", err)
	}
	return nil
}

func (tomlCodec) Decode(r io.Reader) (buffer.Fields, error) {
	var doc document
	if err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return buffer.Fields{}, corrupt("toml: %v", err)
	}
	return doc.fields()
}
