// Package watch re-runs a target whenever watched files change. It has
// three layers: a recursive file-system watcher, a debouncer that
// coalesces event bursts, and a controller state machine that owns the
// single in-flight run.
package watch

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Event is a file-system change that matched one of the watch patterns.
type Event struct {
	// Path is relative to the watched root, with forward slashes.
	Path string
	Op   fsnotify.Op
	Time time.Time
}

// Watcher observes a directory tree and emits events for paths matching
// the configured doublestar glob patterns. Hidden directories (".git" and
// friends) are never descended into.
type Watcher struct {
	fs       *fsnotify.Watcher
	root     string
	patterns []string
	logger   *slog.Logger

	events chan Event
	errs   chan error

	closeOnce sync.Once
	done      chan struct{}
	loopDone  chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger for watch bookkeeping events.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher watches root recursively and reports changes whose
// root-relative path matches any of the given patterns.
func NewWatcher(root string, patterns []string, opts ...WatcherOption) (*Watcher, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("at least one watch pattern is required")
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid watch pattern %q", p)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		fs:       fsw,
		root:     root,
		patterns: patterns,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		events:   make(chan Event, 64),
		errs:     make(chan error, 8),
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.processLoop()
	return w, nil
}

// Events returns the channel of matching change events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Close stops the watcher and closes its channels.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()
		<-w.loopDone
		close(w.events)
		close(w.errs)
	})
	return err
}

// addTree registers root and every non-hidden subdirectory.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if addErr := w.fs.Add(path); addErr != nil {
			w.logger.Warn("failed to watch directory", "dir", path, "err", addErr)
		}
		return nil
	})
}

func (w *Watcher) processLoop() {
	defer close(w.loopDone)

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod {
		return
	}

	// New directories join the watch so changes beneath them are seen.
	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if !isHidden(filepath.Base(ev.Name)) {
				_ = w.addTree(ev.Name)
			}
		}
	}

	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	if !w.matches(rel) {
		return
	}

	w.logger.Debug("change detected", "path", rel, "op", ev.Op.String())
	select {
	case w.events <- Event{Path: rel, Op: ev.Op, Time: time.Now()}:
	default:
		// Burst overflow: the debouncer collapses events anyway, so a
		// dropped duplicate does not lose a rerun.
	}
}

func (w *Watcher) matches(rel string) bool {
	for _, pattern := range w.patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
