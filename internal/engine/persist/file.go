package persist

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/charbuf/internal/engine/buffer"
	"github.com/dshills/charbuf/internal/log"
)

// Save writes b to path with codec c. The file is written to a temporary
// sibling and renamed into place, so readers never see a partial file.
func Save(path string, c Codec, b *buffer.Buffer) (err error) {
	f := b.Fields()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	if err = c.Encode(w, f); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	// CreateTemp makes the file 0600; keep the mode of the file being
	// replaced, or use 0644 for a new one.
	mode := os.FileMode(0o644)
	if fi, statErr := os.Stat(path); statErr == nil {
		mode = fi.Mode().Perm()
	}
	if err = tmp.Chmod(mode); err != nil {
		return fmt.Errorf("setting mode of %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}

	log.Debug("saved buffer", "path", path, "format", c.Name(), "count", f.Count, "capacity", len(f.Value))
	return nil
}

// Load reads a buffer persisted at path with codec c.
func Load(path string, c Codec) (*buffer.Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	b, err := Decode(bufio.NewReader(file), c)
	if err != nil {
		return nil, fmt.Errorf("decoding %s as %s: %w", path, c.Name(), err)
	}

	log.Debug("loaded buffer", "path", path, "format", c.Name(), "length", b.Len(), "capacity", b.Cap())
	return b, nil
}

// LoadAuto reads a buffer, choosing the codec from the file extension.
func LoadAuto(path string) (*buffer.Buffer, Codec, error) {
	name, err := FormatFromPath(path)
	if err != nil {
		return nil, nil, err
	}
	c, err := Lookup(name)
	if err != nil {
		return nil, nil, err
	}
	b, err := Load(path, c)
	if err != nil {
		return nil, nil, err
	}
	return b, c, nil
}
