package watcher

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// shouldSkipDirectories are directories that should not be watched.
var shouldSkipDirectories = map[string]bool{
	".git":              true,
	".jj":               true,
	"node_modules":      true,
	domain.KilnDirName: true,
}

const eventChannelBuffer = 100

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the per-path debounce window.
func WithDebounce(window time.Duration) Option {
	return func(w *Watcher) {
		if window > 0 {
			w.window = window
		}
	}
}

// WithLogger reports file system errors to logger.
func WithLogger(logger ports.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// Watcher implements ports.Watcher using fsnotify. Directory roots are
// watched recursively. A file root is watched through its parent directory,
// so editors that save by renaming over the file are still seen.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	logger    ports.Logger
	window    time.Duration

	// dirs are watched recursively; files are single-file roots whose parent
	// is in fileDirs. Both are owned by the event goroutine once Start returns.
	dirs     map[string]bool
	files    map[string]bool
	fileDirs map[string]bool

	events chan ports.WatchEvent
	done   chan struct{}
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

// NewWatcher creates a file system watcher.
func NewWatcher(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(domain.ErrWatcherStartFailed, err.Error())
	}

	w := &Watcher{
		fsWatcher: fsw,
		window:    domain.DefaultDebounce,
		dirs:      make(map[string]bool),
		files:     make(map[string]bool),
		fileDirs:  make(map[string]bool),
		events:    make(chan ports.WatchEvent, eventChannelBuffer),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.window, w.emit)
	return w, nil
}

// Start begins watching roots. It must be called at most once.
func (w *Watcher) Start(ctx context.Context, roots ...string) error {
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return zerr.With(zerr.Wrap(domain.ErrWatcherStartFailed, err.Error()), "root", root)
		}

		if info.IsDir() {
			for dir := range w.watchRecursively(root) {
				if err := w.fsWatcher.Add(dir); err != nil {
					return zerr.With(zerr.Wrap(domain.ErrWatcherStartFailed, err.Error()), "dir", dir)
				}
				w.dirs[dir] = true
			}
			continue
		}

		w.files[root] = true
		parent := filepath.Dir(root)
		if !w.fileDirs[parent] {
			if err := w.fsWatcher.Add(parent); err != nil {
				return zerr.With(zerr.Wrap(domain.ErrWatcherStartFailed, err.Error()), "dir", parent)
			}
			w.fileDirs[parent] = true
		}
	}

	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher, drops pending events and ends Events.
func (w *Watcher) Stop() error {
	err := w.fsWatcher.Close()
	w.shutdown()
	return err
}

// Events returns an iterator of debounced file system events. It ends when
// the watcher stops or the context passed to Start is cancelled.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

// emit hands a debounced event to Events. It gives up once the watcher is
// shutting down.
func (w *Watcher) emit(ev ports.WatchEvent) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.events <- ev:
	case <-w.done:
	}
}

func (w *Watcher) shutdown() {
	w.once.Do(func() {
		w.debouncer.Stop()
		close(w.done)

		w.mu.Lock()
		w.closed = true
		close(w.events)
		w.mu.Unlock()
	})
}

// watchRecursively walks the directory tree and yields all directories.
func (w *Watcher) watchRecursively(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable directories are skipped
			}
			if d.IsDir() {
				if path != root && shouldSkipDirectories[d.Name()] {
					return fs.SkipDir
				}
				if !yield(path) {
					return filepath.SkipAll
				}
			}
			return nil
		})
	}
}

// wanted reports whether an event on path belongs to a root. Events in a
// parent watched only for a file root are limited to that file.
func (w *Watcher) wanted(path string) bool {
	dir := filepath.Dir(path)
	if w.dirs[dir] || w.dirs[path] {
		return true
	}
	return w.files[path]
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.shutdown()

	for {
		select {
		case <-ctx.Done():
			_ = w.fsWatcher.Close()
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			watchEvent, ok := convertEvent(event)
			if !ok || !w.wanted(event.Name) {
				continue
			}

			if watchEvent.Operation == ports.OpCreate && w.dirs[filepath.Dir(event.Name)] {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !shouldSkipDirectories[info.Name()] {
					for dir := range w.watchRecursively(event.Name) {
						if err := w.fsWatcher.Add(dir); err == nil {
							w.dirs[dir] = true
						}
					}
					continue
				}
			}
			if watchEvent.Operation == ports.OpRemove || watchEvent.Operation == ports.OpRename {
				delete(w.dirs, event.Name)
			}

			w.debouncer.Add(watchEvent)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("watcher: file system error: " + err.Error())
			}
		}
	}
}

// convertEvent maps an fsnotify event to a WatchEvent. Chmod-only events
// are dropped.
func convertEvent(event fsnotify.Event) (ports.WatchEvent, bool) {
	ev := ports.WatchEvent{Path: event.Name}
	switch {
	case event.Has(fsnotify.Remove):
		ev.Operation = ports.OpRemove
	case event.Has(fsnotify.Rename):
		ev.Operation = ports.OpRename
	case event.Has(fsnotify.Create):
		ev.Operation = ports.OpCreate
	case event.Has(fsnotify.Write):
		ev.Operation = ports.OpWrite
	default:
		return ev, false
	}
	return ev, true
}
