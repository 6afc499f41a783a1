package domain

import "time"

// Summary is the tally of one invocation.
type Summary struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Cached    int           `json:"cached"`
	Failed    int           `json:"failed"`
	Errors    int           `json:"errors"`
	Warnings  int           `json:"warnings"`
	Duration  time.Duration `json:"duration"`
}

// OK reports whether no file failed.
func (s Summary) OK() bool {
	return s.Failed == 0
}

// Add counts one file result.
func (s *Summary) Add(r FileResult) {
	s.Total++
	switch r.Outcome {
	case OutcomeCached:
		s.Cached++
	case OutcomeSucceeded:
		s.Succeeded++
	case OutcomeFailed, OutcomeTimeout:
		s.Failed++
	}
}

// Invocation is one journaled run of the orchestrator.
type Invocation struct {
	ID         string
	Mode       Mode
	StartedAt  time.Time
	FinishedAt time.Time
	Summary    Summary
	Errors     []CompilationError
}

// Finished reports whether the invocation has been closed.
func (i Invocation) Finished() bool {
	return !i.FinishedAt.IsZero()
}
