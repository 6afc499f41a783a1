package telemetry

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

const (
	// DefaultSizeLimit is the buffered size (4KB) that forces a flush.
	DefaultSizeLimit = 4096
	// DefaultTimeLimit is the interval (50ms) between periodic flushes.
	DefaultTimeLimit = 50 * time.Millisecond
)

// errBatcherClosed is returned when writing to a closed LineBatcher.
var errBatcherClosed = errors.New("log batcher is closed")

// LineBatcher buffers span output and hands it on in whole lines, either
// periodically or once the buffer grows past its size limit. A trailing
// partial line is held back until it is completed or the batcher closes.
type LineBatcher struct {
	sizeLimit int
	timeLimit time.Duration
	onFlush   func([]byte)

	mu     sync.Mutex
	buffer bytes.Buffer
	ticker *time.Ticker
	stopCh chan struct{}
	closed bool
}

// NewLineBatcher starts a batcher. Zero limits select the defaults.
// Close must be called to stop its ticker.
func NewLineBatcher(sizeLimit int, timeLimit time.Duration, onFlush func([]byte)) *LineBatcher {
	if sizeLimit <= 0 {
		sizeLimit = DefaultSizeLimit
	}
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}

	b := &LineBatcher{
		sizeLimit: sizeLimit,
		timeLimit: timeLimit,
		onFlush:   onFlush,
		ticker:    time.NewTicker(timeLimit),
		stopCh:    make(chan struct{}),
	}
	go b.run()
	return b
}

// Write buffers p. Crossing the size limit flushes everything, partial line
// included, so a single huge line cannot grow the buffer without bound.
func (b *LineBatcher) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, errBatcherClosed
	}

	n, _ := b.buffer.Write(p)
	if b.buffer.Len() >= b.sizeLimit {
		b.flushLocked(true)
		b.ticker.Reset(b.timeLimit)
	}
	return n, nil
}

// Flush hands on every complete line.
func (b *LineBatcher) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.flushLocked(false)
	}
}

// Close stops the ticker and hands on whatever is left.
func (b *LineBatcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	close(b.stopCh)
	b.flushLocked(true)
	return nil
}

func (b *LineBatcher) run() {
	for {
		select {
		case <-b.ticker.C:
			b.Flush()
		case <-b.stopCh:
			b.ticker.Stop()
			return
		}
	}
}

// flushLocked must be called with mu held. onFlush runs under the lock to
// keep chunks in order, so it must not block.
func (b *LineBatcher) flushLocked(all bool) {
	n := b.buffer.Len()
	if !all {
		n = bytes.LastIndexByte(b.buffer.Bytes(), '\n') + 1
	}
	if n == 0 {
		return
	}

	data := make([]byte, n)
	copy(data, b.buffer.Next(n))
	if b.onFlush != nil {
		b.onFlush(data)
	}
}
