package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/watcher"
	"go.trai.ch/kiln/internal/core/ports"
)

type collector struct {
	mu     sync.Mutex
	events []ports.WatchEvent
}

func (c *collector) add(ev ports.WatchEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) all() []ports.WatchEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ports.WatchEvent(nil), c.events...)
}

func TestDebouncer_SinglePath(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c collector
		d := watcher.NewDebouncer(100*time.Millisecond, c.add)

		d.Add(ports.WatchEvent{Path: "/proj/src/a.ts", Operation: ports.OpWrite})

		time.Sleep(99 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, c.all())

		time.Sleep(2 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, []ports.WatchEvent{{Path: "/proj/src/a.ts", Operation: ports.OpWrite}}, c.all())
	})
}

func TestDebouncer_RepeatedEventsCoalesceToLastOperation(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c collector
		d := watcher.NewDebouncer(100*time.Millisecond, c.add)

		d.Add(ports.WatchEvent{Path: "/proj/src/a.ts", Operation: ports.OpWrite})
		time.Sleep(60 * time.Millisecond)
		d.Add(ports.WatchEvent{Path: "/proj/src/a.ts", Operation: ports.OpWrite})
		time.Sleep(60 * time.Millisecond)
		d.Add(ports.WatchEvent{Path: "/proj/src/a.ts", Operation: ports.OpRemove})

		time.Sleep(60 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, c.all(), "each event restarts the window")

		time.Sleep(50 * time.Millisecond)
		synctest.Wait()
		require.Len(t, c.all(), 1)
		assert.Equal(t, ports.OpRemove, c.all()[0].Operation)
	})
}

func TestDebouncer_PathsHaveIndependentTimers(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c collector
		d := watcher.NewDebouncer(100*time.Millisecond, c.add)

		d.Add(ports.WatchEvent{Path: "/proj/src/a.ts", Operation: ports.OpWrite})
		time.Sleep(50 * time.Millisecond)
		d.Add(ports.WatchEvent{Path: "/proj/src/b.ts", Operation: ports.OpCreate})

		// A keeps changing but must not hold back b.
		time.Sleep(40 * time.Millisecond)
		d.Add(ports.WatchEvent{Path: "/proj/src/a.ts", Operation: ports.OpWrite})

		time.Sleep(70 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, []ports.WatchEvent{{Path: "/proj/src/b.ts", Operation: ports.OpCreate}}, c.all())

		time.Sleep(50 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, []ports.WatchEvent{
			{Path: "/proj/src/b.ts", Operation: ports.OpCreate},
			{Path: "/proj/src/a.ts", Operation: ports.OpWrite},
		}, c.all())
	})
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c collector
		d := watcher.NewDebouncer(100*time.Millisecond, c.add)

		d.Add(ports.WatchEvent{Path: "/proj/src/a.ts", Operation: ports.OpWrite})
		d.Stop()
		d.Add(ports.WatchEvent{Path: "/proj/src/b.ts", Operation: ports.OpWrite})

		time.Sleep(time.Second)
		synctest.Wait()
		assert.Empty(t, c.all())
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		d := watcher.NewDebouncer(10*time.Millisecond, nil)
		d.Add(ports.WatchEvent{Path: "/proj/src/a.ts"})
		time.Sleep(20 * time.Millisecond)
		synctest.Wait()
	})
}
