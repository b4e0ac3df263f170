package persist

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/charbuf/internal/engine/buffer"
	"github.com/dshills/charbuf/internal/log"
)

// WatchDebounce is how long a burst of file events must be quiet before
// the file is reloaded.
var WatchDebounce = 100 * time.Millisecond

// Watch calls fn with the content of path once the watch is established
// and again after every change, until ctx is done. A failed reload is
// passed to fn as an error and watching continues. Watch returns nil when
// ctx is done.
//
// Save replaces files by rename, which drops an inotify watch on the file
// itself, so the parent directory is watched and events are filtered by
// name.
func Watch(ctx context.Context, path string, c Codec, fn func(*buffer.Buffer, error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	fn(Load(abs, c))

	debounce := time.NewTimer(WatchDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				debounce.Reset(WatchDebounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "path", abs, "error", err)

		case <-debounce.C:
			fn(Load(abs, c))
		}
	}
}
