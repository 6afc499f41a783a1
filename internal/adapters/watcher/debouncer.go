// Package watcher implements file system watching for watch mode builds.
package watcher

import (
	"sync"
	"time"
	"unique"

	"go.trai.ch/kiln/internal/core/ports"
)

// Debouncer coalesces rapid events per path. Each path has its own timer, so
// a busy file never delays events for the others. When several operations
// arrive within the window the last one wins.
type Debouncer struct {
	mu       sync.Mutex
	pending  map[unique.Handle[string]]*pendingEvent
	window   time.Duration
	callback func(ports.WatchEvent)
	stopped  bool
}

type pendingEvent struct {
	op    ports.WatchOp
	timer *time.Timer
}

// NewDebouncer creates a debouncer with the given window and callback.
func NewDebouncer(window time.Duration, callback func(ports.WatchEvent)) *Debouncer {
	return &Debouncer{
		pending:  make(map[unique.Handle[string]]*pendingEvent),
		window:   window,
		callback: callback,
	}
}

// Add records ev and restarts the window for its path.
func (d *Debouncer) Add(ev ports.WatchEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	handle := unique.Make(ev.Path)
	if p, ok := d.pending[handle]; ok {
		p.op = ev.Operation
		p.timer.Reset(d.window)
		return
	}

	p := &pendingEvent{op: ev.Operation}
	p.timer = time.AfterFunc(d.window, func() { d.fire(handle, p) })
	d.pending[handle] = p
}

// fire runs when a path's window expires. A timer that was reset after it
// had already fired finds a different entry, or none, and does nothing.
func (d *Debouncer) fire(handle unique.Handle[string], p *pendingEvent) {
	d.mu.Lock()
	if d.pending[handle] != p {
		d.mu.Unlock()
		return
	}
	delete(d.pending, handle)
	ev := ports.WatchEvent{Path: handle.Value(), Operation: p.op}
	d.mu.Unlock()

	if d.callback != nil {
		d.callback(ev)
	}
}

// Stop drops pending events and ignores later ones.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for _, p := range d.pending {
		p.timer.Stop()
	}
	clear(d.pending)
}
