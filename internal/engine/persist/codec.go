package persist

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/dshills/charbuf/internal/engine/buffer"
)

// Errors returned by the persist package.
var (
	// ErrUnknownFormat indicates a codec name or file extension with no codec.
	ErrUnknownFormat = errors.New("unknown format")
)

// Codec encodes and decodes the persisted form of a buffer.
type Codec interface {
	// Name returns the registry name of the codec.
	Name() string
	// Encode writes f to w.
	Encode(w io.Writer, f buffer.Fields) error
	// Decode reads fields from r. Malformed input returns an error wrapping
	// buffer.ErrCorruptState.
	Decode(r io.Reader) (buffer.Fields, error)
}

var (
	mu     sync.RWMutex
	codecs = map[string]Codec{}
)

func init() {
	Register(Binary)
	Register(JSON)
	Register(YAML)
	Register(TOML)
}

// Register adds c to the registry, replacing any codec of the same name.
func Register(c Codec) {
	mu.Lock()
	defer mu.Unlock()
	codecs[strings.ToLower(c.Name())] = c
}

// Lookup returns the codec registered under name.
func Lookup(name string) (Codec, error) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := codecs[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("codec %q: %w", name, ErrUnknownFormat)
	}
	return c, nil
}

// Names returns the registered codec names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// FormatFromPath maps a file extension to a codec name.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cbuf", ".bin":
		return "binary", nil
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	case ".toml":
		return "toml", nil
	}
	return "", fmt.Errorf("extension of %s: %w", path, ErrUnknownFormat)
}

// Extension returns the preferred file extension for a codec name.
func Extension(name string) string {
	switch strings.ToLower(name) {
	case "binary":
		return ".cbuf"
	case "yaml":
		return ".yaml"
	}
	return "." + strings.ToLower(name)
}

// Encode writes the persisted form of b to w.
func Encode(w io.Writer, c Codec, b *buffer.Buffer) error {
	return c.Encode(w, b.Fields())
}

// Decode reads a persisted buffer from r.
func Decode(r io.Reader, c Codec) (*buffer.Buffer, error) {
	f, err := c.Decode(r)
	if err != nil {
		return nil, err
	}
	return buffer.FromFields(f)
}

func corrupt(format string, args ...any) error {
	return &buffer.CorruptStateError{Reason: fmt.Sprintf(format, args...)}
}
