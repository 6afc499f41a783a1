package typecheck

import (
	"sync"
	"time"
)

// idleTimer fires onIdle once no activity has been seen for timeout.
// It is armed by the first Touch and re-armed by every later one.
type idleTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	timeout time.Duration
	onIdle  func()
}

func newIdleTimer(timeout time.Duration, onIdle func()) *idleTimer {
	return &idleTimer{timeout: timeout, onIdle: onIdle}
}

// Touch records activity and restarts the countdown.
func (l *idleTimer) Touch() {
	if l.timeout <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timer == nil {
		l.timer = time.AfterFunc(l.timeout, l.onIdle)
		return
	}
	l.timer.Reset(l.timeout)
}

// Stop disarms the timer. A later Touch arms it again.
func (l *idleTimer) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}
