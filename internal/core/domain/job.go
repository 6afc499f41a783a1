package domain

import "go.trai.ch/zerr"

// Mode selects how the orchestrator treats a compilation request.
type Mode string

const (
	// ModeIndividual compiles a single requested file and fails fast.
	ModeIndividual Mode = "individual"
	// ModeBatch compiles many files and isolates per-file failures.
	ModeBatch Mode = "batch"
	// ModeWatch recompiles files in response to file-system changes.
	ModeWatch Mode = "watch"
)

// ParseMode converts a string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeIndividual, ModeBatch, ModeWatch:
		return Mode(s), nil
	case "all":
		return ModeBatch, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidMode, "cannot parse mode"), "mode", s)
	}
}

// ChecksCache reports whether the single-file pipeline consults the cache itself.
// In batch mode the scheduler performs the lookup before dispatching.
func (m Mode) ChecksCache() bool {
	return m == ModeIndividual || m == ModeWatch
}

// JobState is the lifecycle state of a CompilationJob.
type JobState string

const (
	// JobPending indicates the job has been created but not started.
	JobPending JobState = "Pending"
	// JobCacheHit indicates the job was short-circuited by a valid cache entry.
	JobCacheHit JobState = "CacheHit"
	// JobRunning indicates the pipeline is executing.
	JobRunning JobState = "Running"
	// JobSucceeded indicates the pipeline completed and the artifact was written.
	JobSucceeded JobState = "Succeeded"
	// JobFailed indicates the pipeline failed or timed out.
	JobFailed JobState = "Failed"
)

// Terminal reports whether no further transition is allowed from s.
func (s JobState) Terminal() bool {
	return s == JobCacheHit || s == JobSucceeded || s == JobFailed
}

// CompilationJob is one request to build one file during one invocation.
type CompilationJob struct {
	Path  string
	Mode  Mode
	State JobState
}

// NewJob creates a pending job.
func NewJob(path string, mode Mode) *CompilationJob {
	return &CompilationJob{Path: path, Mode: mode, State: JobPending}
}

// Transition moves the job to next. A job never leaves a terminal state.
func (j *CompilationJob) Transition(next JobState) error {
	allowed := false
	switch j.State {
	case JobPending:
		allowed = next == JobCacheHit || next == JobRunning || next == JobFailed
	case JobRunning:
		allowed = next == JobSucceeded || next == JobFailed
	}

	if !allowed {
		err := zerr.Wrap(ErrInvalidTransition, "cannot move job "+j.Path)
		err = zerr.With(err, "from", string(j.State))
		return zerr.With(err, "to", string(next))
	}

	j.State = next
	return nil
}

// Outcome is the final classification of a file in a FileResult.
type Outcome string

const (
	// OutcomeCached means the cached artifact was reused.
	OutcomeCached Outcome = "cached"
	// OutcomeSucceeded means the pipeline ran and produced an artifact.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeFailed means at least one stage failed.
	OutcomeFailed Outcome = "failed"
	// OutcomeTimeout means the pipeline did not finish within its budget.
	OutcomeTimeout Outcome = "timeout"
)

// FileResult is what the orchestrator reports for one file.
type FileResult struct {
	Path       string
	OutputPath string
	Outcome    Outcome
	Err        error
}

// OK reports whether the file ended up with a usable artifact and no recorded failure.
func (r FileResult) OK() bool {
	return r.Outcome == OutcomeCached || r.Outcome == OutcomeSucceeded
}
