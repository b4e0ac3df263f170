package persist

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dshills/charbuf/internal/engine/buffer"
)

// YAML writes a mapping with value, count and shared keys.
var YAML Codec = yamlCodec{}

type yamlCodec struct{}

// document is the shape shared by the YAML and TOML codecs. Pointers
// distinguish a missing key from a zero value.
type document struct {
	Value  *[]uint16 `yaml:"value,flow" toml:"value"`
	Count  *int32    `yaml:"count" toml:"count"`
	Shared bool      `yaml:"shared" toml:"shared"`
}

func newDocument(f buffer.Fields) document {
	value := f.Value
	count := f.Count
	return document{Value: &value, Count: &count}
}

func (d document) fields() (buffer.Fields, error) {
	if d.Value == nil {
		return buffer.Fields{}, corrupt("missing value")
	}
	if d.Count == nil {
		return buffer.Fields{}, corrupt("missing count")
	}
	value := *d.Value
	if value == nil {
		value = []uint16{}
	}
	f := buffer.Fields{Value: value, Count: *d.Count}
	if err := f.Validate(); err != nil {
		return buffer.Fields{}, err
	}
	return f, nil
}

func (yamlCodec) Name() string { return "yaml" }

func (yamlCodec) Encode(w io.Writer, f buffer.Fields) error {
	if err := f.Validate(); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(newDocument(f)); err != nil {
		return fmt.Errorf("encoding yaml buffer: %w", err)
	}
	return enc.Close()
}

func (yamlCodec) Decode(r io.Reader) (buffer.Fields, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return buffer.Fields{}, corrupt("empty document")
		}
		return buffer.Fields{}, corrupt("yaml: %v", err)
	}
	return doc.fields()
}
