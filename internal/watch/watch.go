package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thoreinstein/mcpm/internal/client"
	"github.com/thoreinstein/mcpm/internal/discovery"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/logging"
)

// DefaultDebounce coalesces the burst of events a single save produces.
const DefaultDebounce = 300 * time.Millisecond

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger used for watch diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithDebounce overrides DefaultDebounce. Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher reports changes to a fixed set of files.
type Watcher struct {
	logger   *slog.Logger
	debounce time.Duration
	fs       *fsnotify.Watcher
	files    map[string]bool
	changes  chan struct{}

	closeOnce sync.Once
}

// Targets returns every client config path for cwd plus the plugin files
// that currently exist.
func Targets(cwd string) []string {
	var out []string
	for _, k := range client.All() {
		if p, ok := k.ConfigPath(cwd); ok {
			out = append(out, p)
		}
	}
	return append(out, discovery.PluginFiles()...)
}

// New starts watching the parent directory of every target that exists.
// Targets whose directory is missing are skipped; a watcher with nothing to
// watch is valid and never fires.
func New(targets []string, opts ...Option) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating file watcher")
	}

	w := &Watcher{
		logger:   logging.NewDiscard(),
		debounce: DefaultDebounce,
		fs:       fs,
		files:    make(map[string]bool, len(targets)),
		changes:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}

	dirs := make(map[string]bool)
	for _, t := range targets {
		t = filepath.Clean(t)
		w.files[t] = true
		dir := filepath.Dir(t)
		if dirs[dir] {
			continue
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if err := fs.Add(dir); err != nil {
			w.logger.Debug("skipping watch", "dir", dir, "error", err)
			continue
		}
		dirs[dir] = true
	}
	w.logger.Debug("watching client config directories", "count", len(dirs))
	return w, nil
}

// Changes delivers one value per debounced burst of edits. Bursts that
// arrive while a previous value is unread are merged into it.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Run forwards file events until ctx is cancelled or the watcher is
// closed. It always closes the watcher before returning.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.files[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("client config changed", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.AfterFunc(w.debounce, w.notify)
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Debug("watch error", "error", err)
		}
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() { err = w.fs.Close() })
	return err
}

func (w *Watcher) notify() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}
