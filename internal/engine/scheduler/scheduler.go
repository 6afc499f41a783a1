// Package scheduler builds source files through the staged pipeline, one at a
// time or as a bounded-concurrency batch.
package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/aggregator"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const (
	// CleanupInterval is the number of batch tasks between memory cleanups.
	CleanupInterval = 50
	// CleanupEvictions is how many entries a cleanup evicts under heap pressure.
	CleanupEvictions = 10
)

// Stages bundles the stage collaborators. Template, Typed and Minify may be
// nil, in which case the stage is skipped. Standardize is required.
type Stages struct {
	Template    ports.TemplateCompiler
	Typed       ports.TypedCompiler
	Standardize ports.Standardizer
	Minify      ports.Minifier
}

// Deps holds the collaborators of a Scheduler.
type Deps struct {
	Cache      ports.CompilationCache
	Stages     Stages
	Checker    ports.TypeChecker
	Aggregator *aggregator.Aggregator
	Tracer     ports.Tracer
	Metrics    ports.MetricsRecorder
	Probe      ports.MemoryProbe
	Logger     ports.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithFs sets the filesystem sources are read from and artifacts written to.
func WithFs(fs afero.Fs) Option {
	return func(s *Scheduler) {
		s.fs = fs
	}
}

// WithCores overrides the detected CPU count.
func WithCores(n int) Option {
	return func(s *Scheduler) {
		s.cores = n
	}
}

// Scheduler runs the compilation pipeline.
type Scheduler struct {
	cfg        *domain.Config
	cache      ports.CompilationCache
	stages     Stages
	checker    ports.TypeChecker
	aggregator *aggregator.Aggregator
	tracer     ports.Tracer
	metrics    ports.MetricsRecorder
	probe      ports.MemoryProbe
	logger     ports.Logger
	fs         afero.Fs
	resolver   *Resolver
	cores      int
}

// NewScheduler creates a Scheduler for cfg.
func NewScheduler(cfg *domain.Config, deps Deps, opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg:        cfg,
		cache:      deps.Cache,
		stages:     deps.Stages,
		checker:    deps.Checker,
		aggregator: deps.Aggregator,
		tracer:     deps.Tracer,
		metrics:    deps.Metrics,
		probe:      deps.Probe,
		logger:     deps.Logger,
		fs:         afero.NewOsFs(),
		cores:      runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resolver = NewResolver(s.fs, cfg)
	return s
}

// CompileOne builds a single file. In individual and watch mode a valid cache
// entry short-circuits the pipeline. The pipeline is raced against the
// configured per-file timeout.
func (s *Scheduler) CompileOne(ctx context.Context, path string, mode domain.Mode) domain.FileResult {
	job := domain.NewJob(filepath.Clean(path), mode)

	ctx, span := s.tracer.Start(ctx, s.displayName(job.Path), ports.WithAttribute("kiln.mode", string(mode)))
	defer span.End()

	result := domain.FileResult{Path: job.Path}
	out, err := s.cfg.OutputPathFor(job.Path)
	if err != nil {
		s.aggregator.Record(domain.CompilationError{File: job.Path, Stage: domain.StageFileRead, Message: err.Error()})
		_ = job.Transition(domain.JobFailed)
		span.RecordError(err)
		result.Outcome = domain.OutcomeFailed
		result.Err = err
		return result
	}
	result.OutputPath = out

	if mode.ChecksCache() && s.cache.IsValid(job.Path) {
		s.adopt(job.Path)
		_ = job.Transition(domain.JobCacheHit)
		span.SetAttribute("kiln.cached", true)
		result.Outcome = domain.OutcomeCached
		return result
	}

	_ = job.Transition(domain.JobRunning)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.runPipeline(ctx, job, out, span)
	}()

	timer := time.NewTimer(s.cfg.Timeout)
	defer timer.Stop()

	select {
	case err = <-done:
	case <-timer.C:
		err = zerr.With(zerr.Wrap(domain.ErrCompileTimeout, "pipeline did not finish"), "file", job.Path)
		s.aggregator.Record(domain.CompilationError{
			File:    job.Path,
			Stage:   domain.StageTimeout,
			Message: domain.ErrCompileTimeout.Error(),
			Details: "exceeded " + s.cfg.Timeout.String(),
		})
		_ = job.Transition(domain.JobFailed)
		span.RecordError(err)
		result.Outcome = domain.OutcomeTimeout
		result.Err = err
		return result
	case <-ctx.Done():
		err = ctx.Err()
	}

	if err != nil {
		_ = job.Transition(domain.JobFailed)
		span.RecordError(err)
		result.Outcome = domain.OutcomeFailed
		result.Err = err
		return result
	}

	_ = job.Transition(domain.JobSucceeded)
	result.Outcome = domain.OutcomeSucceeded
	return result
}

// runPipeline reads the source, runs every applicable stage and writes the
// artifact. Only a fully successful build refreshes the cache.
func (s *Scheduler) runPipeline(ctx context.Context, job *domain.CompilationJob, out string, span ports.Span) error {
	src, err := afero.ReadFile(s.fs, job.Path)
	if err != nil {
		s.fail(job.Path, &domain.StageError{Stage: domain.StageFileRead, Message: domain.ErrFileReadFailed.Error(), Details: err.Error()}, span)
		s.aggregator.RecordStage(domain.StageFileRead, job.Path, false)
		return zerr.With(zerr.Wrap(domain.ErrFileReadFailed, err.Error()), "file", job.Path)
	}
	s.aggregator.RecordStage(domain.StageFileRead, job.Path, true)

	text := string(src)
	ext := filepath.Ext(job.Path)
	var info *domain.ScriptInfo
	lang := ""

	if ext == ".vue" && s.stages.Template != nil {
		output, stageErr := s.runStage(ctx, domain.StageTemplate, job.Path, span, func(ctx context.Context) domain.StageResult {
			return s.stages.Template.Compile(ctx, text, job.Path, s.cfg.Production)
		})
		if stageErr != nil {
			return stageFailure(job.Path, stageErr)
		}
		text, lang, info = output.Text, output.Lang, output.ScriptInfo
	}

	clean := true
	if isTyped(ext, lang, info) {
		input := text
		output, stageErr := s.runStage(ctx, domain.StageTyped, job.Path, span, func(ctx context.Context) domain.StageResult {
			return s.typed(ctx, job.Path, string(src), input, info)
		})
		switch {
		case stageErr == nil:
			text = output.Text
		case job.Mode == domain.ModeBatch:
			// Keep the untransformed code so the rest of the batch is still accounted for.
			clean = false
		default:
			return stageFailure(job.Path, stageErr)
		}
	}

	input := text
	output, stageErr := s.runStage(ctx, domain.StageStandardize, job.Path, span, func(ctx context.Context) domain.StageResult {
		return s.stages.Standardize.Standardize(ctx, input, job.Path)
	})
	if stageErr != nil {
		return stageFailure(job.Path, stageErr)
	}
	text = output.Text

	if s.cfg.Production && s.stages.Minify != nil {
		input := text
		output, stageErr := s.runStage(ctx, domain.StageMinify, job.Path, span, func(ctx context.Context) domain.StageResult {
			return s.stages.Minify.Minify(ctx, input, job.Path, true)
		})
		if stageErr != nil {
			return stageFailure(job.Path, stageErr)
		}
		text = output.Text
	}

	// A pipeline that lost the timeout race must not leave an artifact behind.
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.write(out, text); err != nil {
		s.fail(job.Path, &domain.StageError{Stage: domain.StageFileWrite, Message: domain.ErrFileWriteFailed.Error(), Details: err.Error()}, span)
		s.aggregator.RecordStage(domain.StageFileWrite, job.Path, false)
		return err
	}
	s.aggregator.RecordStage(domain.StageFileWrite, job.Path, true)

	if !clean {
		return zerr.With(zerr.Wrap(domain.ErrStageFailed, string(domain.StageTyped)), "file", job.Path)
	}

	s.cache.Set(job.Path, out)
	s.cache.RegisterDependencies(job.Path, s.resolver.Dependencies(job.Path, src))
	return nil
}

// runStage runs one stage under its own span and records its outcome.
func (s *Scheduler) runStage(
	ctx context.Context,
	stage domain.Stage,
	path string,
	parent ports.Span,
	run func(context.Context) domain.StageResult,
) (domain.StageOutput, *domain.StageError) {
	ctx, span := s.tracer.Start(ctx, string(stage), ports.WithAttribute("kiln.file", path))
	defer span.End()

	start := time.Now()
	res := run(ctx)
	s.metrics.ObserveStageDuration(stage, time.Since(start))

	stageErr := res.Error(stage)
	s.metrics.IncStageResult(stage, stageErr == nil)
	s.aggregator.RecordStage(stage, path, stageErr == nil)
	if stageErr != nil {
		span.RecordError(stageErr)
		s.fail(path, stageErr, parent)
		return domain.StageOutput{}, stageErr
	}
	return res.Output, nil
}

// typed type-checks the file on the worker pool, then runs the typed
// compiler. Worker failures are reported but never block the compile.
func (s *Scheduler) typed(ctx context.Context, path, original, text string, info *domain.ScriptInfo) domain.StageResult {
	if s.checker != nil {
		resp, err := s.checker.Check(ctx, domain.WorkerRequest{
			FileName:        path,
			Content:         original,
			CompilerOptions: s.compilerOptions(),
		})
		switch {
		case err != nil || !resp.Success:
			message := resp.Error
			if err != nil {
				message = err.Error()
			}
			s.aggregator.Record(domain.CompilationError{
				File:     path,
				Stage:    domain.StageWorker,
				Message:  message,
				Severity: domain.SeverityWarning,
			})
		case resp.HasErrors:
			return domain.StageResult{Err: &domain.StageError{
				Stage:   domain.StageTyped,
				Message: fmt.Sprintf("%d type error(s)", resp.ErrorCount()),
				Details: formatDiagnostics(resp.Diagnostics),
			}}
		}
	}

	if s.stages.Typed == nil {
		return domain.StageOK(text)
	}
	return s.stages.Typed.Compile(ctx, text, path, info)
}

func (s *Scheduler) compilerOptions() map[string]any {
	opts := map[string]any{
		"noEmit":          true,
		"strict":          true,
		"isolatedModules": true,
	}
	if len(s.cfg.TargetLibs) > 0 {
		opts["lib"] = s.cfg.TargetLibs
	}
	return opts
}

func (s *Scheduler) write(out, text string) error {
	if err := s.fs.MkdirAll(filepath.Dir(out), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrFileWriteFailed, err.Error()), "path", out)
	}
	if err := afero.WriteFile(s.fs, out, []byte(text), domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrFileWriteFailed, err.Error()), "path", out)
	}
	return nil
}

// fail records a stage error and echoes it to the file's span output.
func (s *Scheduler) fail(path string, stageErr *domain.StageError, span ports.Span) {
	s.aggregator.Record(domain.CompilationError{
		File:     path,
		Stage:    stageErr.Stage,
		Message:  stageErr.Message,
		Severity: stageErr.Stage.Severity(),
		Details:  stageErr.Details,
		Help:     stageErr.Help,
	})
	_, _ = fmt.Fprintf(span, "%s: %s\n", stageErr.Stage, stageErr.Message)
	if stageErr.Details != "" {
		_, _ = fmt.Fprintln(span, stageErr.Details)
	}
}

// CompileMany builds paths with at most Ceiling files in flight. Results are
// returned in input order regardless of completion order.
func (s *Scheduler) CompileMany(ctx context.Context, paths []string) []domain.FileResult {
	ctx, span := s.tracer.Start(ctx, "batch", ports.WithAttribute("kiln.files", len(paths)))
	defer span.End()

	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = s.displayName(p)
	}
	s.tracer.EmitPlan(ctx, names)

	usage, known := s.probe.SystemUsage()
	ceiling := Ceiling(CeilingInput{
		Cores:       s.cores,
		Files:       len(paths),
		MemoryUsage: usage,
		MemoryKnown: known,
		Override:    s.cfg.Concurrency.Max,
		HardCap:     s.cfg.Concurrency.HardCap,
	})
	s.metrics.SetConcurrency(ceiling)
	defer s.metrics.SetConcurrency(0)
	s.logger.Debug(fmt.Sprintf("compiling %d files, %d at a time", len(paths), ceiling))

	results := make([]domain.FileResult, len(paths))
	var processed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(ceiling)
	for i, path := range paths {
		g.Go(func() error {
			results[i] = s.batchTask(ctx, path)
			if processed.Add(1)%CleanupInterval == 0 {
				s.cleanup()
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *Scheduler) batchTask(ctx context.Context, path string) domain.FileResult {
	path = filepath.Clean(path)
	if !s.cache.IsValid(path) {
		return s.CompileOne(ctx, path, domain.ModeBatch)
	}
	s.adopt(path)
	out, _ := s.cfg.OutputPathFor(path)
	return domain.FileResult{Path: path, OutputPath: out, Outcome: domain.OutcomeCached}
}

// adopt registers the imports of a file served from the cache. The graph is
// not persisted, so a warm start rebuilds it from the sources it skips.
func (s *Scheduler) adopt(path string) {
	src, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return
	}
	s.cache.RegisterDependencies(path, s.resolver.Dependencies(path, src))
}

func (s *Scheduler) cleanup() {
	s.probe.Collect()
	if n := s.cache.Relieve(CleanupEvictions); n > 0 {
		s.logger.Debug(fmt.Sprintf("heap above high-water mark, evicted %d cache entries", n))
	}
}

// displayName returns path relative to the source root when possible.
func (s *Scheduler) displayName(path string) string {
	if rel, err := filepath.Rel(s.cfg.SourceRoot, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func isTyped(ext, lang string, info *domain.ScriptInfo) bool {
	if ext == ".ts" || ext == ".tsx" || lang == "ts" || lang == "tsx" {
		return true
	}
	return info != nil && (info.Lang == "ts" || info.Lang == "tsx")
}

func stageFailure(path string, stageErr *domain.StageError) error {
	return zerr.With(zerr.Wrap(domain.ErrStageFailed, stageErr.Error()), "file", path)
}

func formatDiagnostics(diags []domain.Diagnostic) string {
	var b strings.Builder
	for _, d := range diags {
		if d.Line > 0 {
			fmt.Fprintf(&b, "%s:%d:%d: %s TS%d: %s\n", d.File, d.Line, d.Column, d.Category, d.Code, d.Message)
			continue
		}
		fmt.Fprintf(&b, "%s: %s TS%d: %s\n", d.File, d.Category, d.Code, d.Message)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
