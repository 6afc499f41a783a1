package domain

import "go.trai.ch/zerr"

var (
	// ErrConfigNotFound is returned when no kiln.yaml can be found walking up from the working directory.
	ErrConfigNotFound = zerr.New("could not find kiln.yaml")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when a config value is out of range or malformed.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrEnvFileLoadFailed is returned when the project .env file exists but cannot be parsed.
	ErrEnvFileLoadFailed = zerr.New("failed to load .env file")

	// ErrInvalidMode is returned when a compilation mode string is not recognised.
	ErrInvalidMode = zerr.New("invalid compilation mode, expected 'individual', 'batch' or 'watch'")

	// ErrInvalidTransition is returned when a job is moved out of a terminal state.
	ErrInvalidTransition = zerr.New("invalid job state transition")

	// ErrPathOutsideSourceRoot is returned when a file does not live under the source root.
	ErrPathOutsideSourceRoot = zerr.New("path is outside source root")

	// ErrUnsupportedExtension is returned when a file extension has no build mapping.
	ErrUnsupportedExtension = zerr.New("unsupported source extension")

	// ErrFileReadFailed is returned when a source file cannot be read.
	ErrFileReadFailed = zerr.New("failed to read source file")

	// ErrFileWriteFailed is returned when an artifact cannot be written.
	ErrFileWriteFailed = zerr.New("failed to write artifact")

	// ErrEmptyStageOutput is returned when a stage producer returns no text.
	ErrEmptyStageOutput = zerr.New("producer returned nothing")

	// ErrStageFailed is returned when a pipeline stage reports an error.
	ErrStageFailed = zerr.New("pipeline stage failed")

	// ErrCompileTimeout is returned when a single-file pipeline exceeds its wall-clock budget.
	ErrCompileTimeout = zerr.New("compilation timed out")

	// ErrBuildFailed is returned when one or more files failed to build.
	ErrBuildFailed = zerr.New("build failed")

	// ErrNoSourceFiles is returned when a batch finds nothing to compile.
	ErrNoSourceFiles = zerr.New("no source files found")

	// ErrCacheReadFailed is returned when the persisted cache cannot be read.
	ErrCacheReadFailed = zerr.New("failed to read compilation cache")

	// ErrCacheUnmarshalFailed is returned when the persisted cache cannot be decoded.
	ErrCacheUnmarshalFailed = zerr.New("failed to unmarshal compilation cache")

	// ErrCacheMarshalFailed is returned when the cache cannot be encoded.
	ErrCacheMarshalFailed = zerr.New("failed to marshal compilation cache")

	// ErrCacheWriteFailed is returned when the cache cannot be persisted.
	ErrCacheWriteFailed = zerr.New("failed to write compilation cache")

	// ErrWorkerTimeout is returned when a type-check request receives no reply in time.
	ErrWorkerTimeout = zerr.New("type-check worker timed out")

	// ErrWorkerPoolClosed is returned when a request is submitted to a closed pool.
	ErrWorkerPoolClosed = zerr.New("type-check worker pool is closed")

	// ErrWorkerPanic is returned when a worker recovers from a panic while serving a request.
	ErrWorkerPanic = zerr.New("type-check worker panicked")

	// ErrAnalyzerFailed is returned when the external analyzer cannot be run.
	ErrAnalyzerFailed = zerr.New("analyzer invocation failed")

	// ErrCommandFailed is returned when an external stage command exits unsuccessfully.
	ErrCommandFailed = zerr.New("command failed")

	// ErrCommandOutputInvalid is returned when an external command prints an unparsable reply.
	ErrCommandOutputInvalid = zerr.New("command produced invalid output")

	// ErrJournalOpenFailed is returned when the build journal database cannot be opened.
	ErrJournalOpenFailed = zerr.New("failed to open build journal")

	// ErrJournalWriteFailed is returned when a build journal record cannot be written.
	ErrJournalWriteFailed = zerr.New("failed to write build journal")

	// ErrJournalReadFailed is returned when the build journal cannot be queried.
	ErrJournalReadFailed = zerr.New("failed to read build journal")

	// ErrWatcherStartFailed is returned when the file watcher cannot be started.
	ErrWatcherStartFailed = zerr.New("failed to start file watcher")
)
