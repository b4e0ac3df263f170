package main

import (
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dshills/charbuf/internal/engine/buffer"
)

// textEncoding returns the decoder side for an input encoding name. A
// leading byte order mark is honored and stripped.
func textEncoding(name string) (encoding.Encoding, error) {
	switch name {
	case "utf-8":
		return unicode.UTF8BOM, nil
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	}
	return nil, fmt.Errorf("unsupported input encoding %q", name)
}

// readText decodes r into a new buffer.
func readText(r io.Reader, enc string) (*buffer.Buffer, error) {
	e, err := textEncoding(enc)
	if err != nil {
		return nil, err
	}
	b := buffer.New()
	if _, err := b.ReadFrom(transform.NewReader(r, e.NewDecoder())); err != nil {
		return nil, fmt.Errorf("decoding %s input: %w", enc, err)
	}
	return b, nil
}
