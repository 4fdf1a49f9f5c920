// Package watch reports changes to the activities file.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Tiliavir/stt/internal/logging"
)

// DefaultDebounce coalesces the burst of events an atomic save produces.
const DefaultDebounce = 100 * time.Millisecond

const relevantOps = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

type Option func(o *options)

type options struct {
	debounce time.Duration
	log      *slog.Logger
}

func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// Watch calls onChange after the file at path is written, replaced or
// removed, at most once per debounce period. The parent directory is
// watched rather than the file so atomic renames are seen. Watch blocks
// until ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(), opts ...Option) error {
	o := &options{
		debounce: DefaultDebounce,
		log:      logging.Discard(),
	}
	for _, apply := range opts {
		apply(o)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	o.log.Debug("watching", "file", target)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || event.Op&relevantOps == 0 {
				continue
			}
			o.log.Debug("file event", "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(o.debounce)
			} else {
				timer.Reset(o.debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			o.log.Warn("file watch error", "err", err)

		case <-fire:
			fire = nil
			onChange()
		}
	}
}
