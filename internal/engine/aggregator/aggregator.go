// Package aggregator collects structured errors and per-stage tallies for one
// invocation, or for one cycle in watch mode.
package aggregator

import (
	"slices"
	"sync"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
)

// Aggregator is safe for concurrent use by the scheduler's tasks.
type Aggregator struct {
	mu      sync.Mutex
	errors  []domain.CompilationError
	results map[domain.Stage]*domain.CompilationResult
	files   map[string][]domain.CompilationError
	now     func() time.Time
}

// New creates an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{
		results: make(map[domain.Stage]*domain.CompilationResult),
		files:   make(map[string][]domain.CompilationError),
		now:     time.Now,
	}
}

// Record stores one problem. A missing severity means error and a missing
// timestamp is filled in.
func (a *Aggregator) Record(e domain.CompilationError) {
	if e.Severity == "" {
		e.Severity = domain.SeverityError
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if e.Timestamp.IsZero() {
		e.Timestamp = a.now()
	}
	a.errors = append(a.errors, e)
	if e.File != "" && e.Severity == domain.SeverityError {
		a.files[e.File] = append(a.files[e.File], e)
	}
}

// RecordStage counts one stage outcome for file.
func (a *Aggregator) RecordStage(stage domain.Stage, file string, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, exists := a.results[stage]
	if !exists {
		r = &domain.CompilationResult{Stage: stage}
		a.results[stage] = r
	}
	if ok {
		r.SuccessCount++
		return
	}
	r.ErrorCount++
	if file != "" && !slices.Contains(r.Files, file) {
		r.Files = append(r.Files, file)
	}
}

// Errors returns every recorded problem in recording order.
func (a *Aggregator) Errors() []domain.CompilationError {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.errors)
}

// Results returns the per-stage tallies in stage taxonomy order.
func (a *Aggregator) Results() []domain.CompilationResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]domain.CompilationResult, 0, len(a.results))
	for _, r := range a.results {
		c := *r
		c.Files = slices.Clone(r.Files)
		out = append(out, c)
	}
	slices.SortFunc(out, func(x, y domain.CompilationResult) int {
		return x.Stage.Rank() - y.Stage.Rank()
	})
	return out
}

// FileFailures returns the error-severity problems grouped by file.
func (a *Aggregator) FileFailures() map[string][]domain.CompilationError {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string][]domain.CompilationError, len(a.files))
	for file, errs := range a.files {
		out[file] = slices.Clone(errs)
	}
	return out
}

// Reset forgets everything recorded so far.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.errors = nil
	a.results = make(map[domain.Stage]*domain.CompilationResult)
	a.files = make(map[string][]domain.CompilationError)
}

// Summary tallies file results together with the recorded problems.
func (a *Aggregator) Summary(results []domain.FileResult, elapsed time.Duration) domain.Summary {
	s := domain.Summary{Duration: elapsed}
	for _, r := range results {
		s.Add(r)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, e := range a.errors {
		if e.Severity == domain.SeverityWarning {
			s.Warnings++
		} else {
			s.Errors++
		}
	}
	return s
}
