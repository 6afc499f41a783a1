// Package typecheck runs type analysis on a pool of background workers.
//
// Requests and replies are correlated by a generated id held in a pending
// map, so a reply that arrives after its requester gave up is dropped.
package typecheck

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.TypeChecker = (*Pool)(nil)

// Option configures a Pool.
type Option func(*Pool)

// WithWorkers sets the number of workers. Values below one are ignored.
func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithTimeout sets how long a request may wait for its reply.
func WithTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithIdleTimeout sets how long the pool stays warm in individual mode.
func WithIdleTimeout(d time.Duration) Option {
	return func(p *Pool) {
		p.idleTimeout = d
	}
}

// WithNoisePolicy replaces the default noise filter.
func WithNoisePolicy(policy NoisePolicy) Option {
	return func(p *Pool) {
		p.noise = policy
	}
}

// generation is one set of running workers. Recycle retires it and the next
// request starts a fresh one.
type generation struct {
	requests chan domain.WorkerRequest
	stop     chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// Pool is a fixed set of long-lived type-check workers.
type Pool struct {
	analyzer    ports.Analyzer
	logger      ports.Logger
	noise       NoisePolicy
	workers     int
	timeout     time.Duration
	idleTimeout time.Duration
	idle        *idleTimer
	newID       func() string

	mu       sync.Mutex
	mode     domain.Mode
	pending  map[string]chan domain.WorkerResponse
	gen      *generation
	closed   chan struct{}
	isClosed bool
}

// New creates a pool. Workers start on the first request.
func New(analyzer ports.Analyzer, logger ports.Logger, opts ...Option) *Pool {
	p := &Pool{
		analyzer:    analyzer,
		logger:      logger,
		noise:       DefaultNoisePolicy(),
		workers:     domain.DefaultWorkers,
		timeout:     domain.DefaultWorkerTimeout,
		idleTimeout: domain.DefaultIdleTimeout,
		newID:       uuid.NewString,
		mode:        domain.ModeBatch,
		pending:     make(map[string]chan domain.WorkerResponse),
		closed:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.idle = newIdleTimer(p.idleTimeout, p.recycleIfIdle)
	return p
}

// Check submits req to a worker and waits for the reply with the same id.
// An error is returned, together with a failed response, only when no reply
// arrived: the pool is closed, the request timed out, or ctx ended.
func (p *Pool) Check(ctx context.Context, req domain.WorkerRequest) (domain.WorkerResponse, error) {
	req.ID = p.newID()
	reply := make(chan domain.WorkerResponse, 1)

	p.mu.Lock()
	p.pending[req.ID] = reply
	individual := p.mode == domain.ModeIndividual
	p.mu.Unlock()
	defer p.forget(req.ID)

	if individual {
		p.idle.Touch()
	}

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	if err := p.submit(ctx, req, timer.C); err != nil {
		return failed(req.ID, err), err
	}

	select {
	case resp := <-reply:
		return resp, nil
	case <-timer.C:
		err := p.timeoutError(req)
		return failed(req.ID, err), err
	case <-p.closed:
		err := zerr.With(zerr.Wrap(domain.ErrWorkerPoolClosed, "request abandoned"), "file", req.FileName)
		return failed(req.ID, err), err
	case <-ctx.Done():
		return failed(req.ID, ctx.Err()), ctx.Err()
	}
}

// submit hands req to an idle worker, following the pool across recycles.
func (p *Pool) submit(ctx context.Context, req domain.WorkerRequest, timeout <-chan time.Time) error {
	for {
		gen, err := p.acquire()
		if err != nil {
			return err
		}

		select {
		case gen.requests <- req:
			return nil
		case <-gen.stop:
			// Retired before any worker took the request.
		case <-timeout:
			return p.timeoutError(req)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *Pool) acquire() (*generation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isClosed {
		return nil, zerr.Wrap(domain.ErrWorkerPoolClosed, "cannot submit type-check request")
	}
	if p.gen == nil {
		p.gen = p.startLocked()
	}
	return p.gen, nil
}

func (p *Pool) startLocked() *generation {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &generation{
		requests: make(chan domain.WorkerRequest),
		stop:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	for range p.workers {
		gen.wg.Go(func() {
			p.work(gen)
		})
	}
	p.logger.Debug(fmt.Sprintf("started %d type-check workers", p.workers))
	return gen
}

func (p *Pool) work(gen *generation) {
	for {
		select {
		case <-gen.stop:
			return
		case req := <-gen.requests:
			p.deliver(p.serve(gen.ctx, req))
		}
	}
}

// serve answers one request. A panic is turned into a failed response and the
// worker keeps serving.
func (p *Pool) serve(ctx context.Context, req domain.WorkerRequest) (resp domain.WorkerResponse) {
	defer func() {
		if r := recover(); r != nil {
			err := zerr.With(zerr.Wrap(domain.ErrWorkerPanic, fmt.Sprint(r)), "file", req.FileName)
			p.logger.Error(err)
			resp = failed(req.ID, err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	host, target := NewHost(req)

	var diags []domain.Diagnostic
	found, err := p.analyzer.Syntactic(ctx, host, target)
	if err != nil {
		p.logger.Warn(fmt.Sprintf("syntactic analysis of %s failed: %v", req.FileName, err))
	}
	diags = append(diags, found...)

	found, err = p.analyzer.Semantic(ctx, host, target)
	if err != nil {
		p.logger.Warn(fmt.Sprintf("semantic analysis of %s failed: %v", req.FileName, err))
	}
	diags = append(diags, found...)

	diags = p.noise.Filter(diags)
	for i := range diags {
		if diags[i].File == "" || diags[i].File == target {
			diags[i].File = req.FileName
		}
	}

	resp = domain.WorkerResponse{ID: req.ID, Success: true, Diagnostics: diags}
	resp.HasErrors = resp.ErrorCount() > 0
	return resp
}

func (p *Pool) deliver(resp domain.WorkerResponse) {
	p.mu.Lock()
	reply, ok := p.pending[resp.ID]
	p.mu.Unlock()

	if !ok {
		p.logger.Debug("dropping late type-check reply " + resp.ID)
		return
	}
	select {
	case reply <- resp:
	default:
	}
}

func (p *Pool) forget(id string) {
	p.mu.Lock()
	delete(p.pending, id)
	p.mu.Unlock()
}

func (p *Pool) timeoutError(req domain.WorkerRequest) error {
	err := zerr.With(zerr.Wrap(domain.ErrWorkerTimeout, "no reply from type-check worker"), "file", req.FileName)
	return zerr.With(err, "timeout", p.timeout.String())
}

// SetMode tunes the lifecycle: individual mode recycles idle workers, batch
// and watch mode keep them until Recycle or Close.
func (p *Pool) SetMode(mode domain.Mode) {
	p.mu.Lock()
	p.mode = mode
	p.mu.Unlock()

	if mode != domain.ModeIndividual {
		p.idle.Stop()
	}
}

// Recycle retires the running workers once they finish their current request.
func (p *Pool) Recycle() {
	p.mu.Lock()
	gen := p.gen
	p.gen = nil
	p.mu.Unlock()

	p.idle.Stop()
	if gen == nil {
		return
	}
	close(gen.stop)
	gen.wg.Wait()
	gen.cancel()
}

func (p *Pool) recycleIfIdle() {
	p.mu.Lock()
	busy := len(p.pending) > 0
	individual := p.mode == domain.ModeIndividual
	p.mu.Unlock()

	if !individual {
		return
	}
	if busy {
		p.idle.Touch()
		return
	}
	p.logger.Debug("type-check workers idle, recycling")
	p.Recycle()
}

// Running reports whether workers are currently started.
func (p *Pool) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen != nil
}

// Close stops every worker. Waiting requests fail with ErrWorkerPoolClosed.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.isClosed {
		p.mu.Unlock()
		return nil
	}
	p.isClosed = true
	close(p.closed)
	gen := p.gen
	p.gen = nil
	p.mu.Unlock()

	p.idle.Stop()
	if gen != nil {
		gen.cancel()
		close(gen.stop)
		gen.wg.Wait()
	}
	return nil
}

func failed(id string, err error) domain.WorkerResponse {
	return domain.WorkerResponse{ID: id, Success: false, Error: err.Error()}
}
