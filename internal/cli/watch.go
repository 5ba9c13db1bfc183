package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
)

// watchDatabase calls onChange after writes to the database file or its
// -wal and -journal companions settle for debounce. Returns when ctx is
// done.
//
// The directory is watched rather than the file because SQLite creates
// and removes the companion files as it goes.
func watchDatabase(ctx context.Context, path string, debounce time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("cannot watch %s: %w", dir, err)
	}
	base := filepath.Base(path)

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasPrefix(filepath.Base(event.Name), base) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			settle = time.After(debounce)

		case <-settle:
			settle = nil
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

// changeDetector remembers the hash of the last output it was shown.
type changeDetector struct {
	seen bool
	last uint64
}

// Changed reports whether out differs from the previous call's output.
// The first call always reports a change.
func (d *changeDetector) Changed(out string) bool {
	h := xxhash.Sum64String(out)
	if d.seen && h == d.last {
		return false
	}
	d.seen = true
	d.last = h
	return true
}
