package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/spf13/afero"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/kiln/internal/adapters/cache"
	"go.trai.ch/kiln/internal/adapters/fingerprint"
	"go.trai.ch/kiln/internal/adapters/journal"
	"go.trai.ch/kiln/internal/adapters/linear"
	"go.trai.ch/kiln/internal/adapters/shell"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/adapters/tui"
	"go.trai.ch/kiln/internal/adapters/typecheck"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/aggregator"
	"go.trai.ch/kiln/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// skipDirs are never searched for sources.
var skipDirs = map[string]bool{
	".git":             true,
	"node_modules":     true,
	domain.KilnDirName: true,
}

// session holds the components built from one loaded configuration.
type session struct {
	cfg        *domain.Config
	mode       domain.Mode
	fs         afero.Fs
	logger     ports.Logger
	probe      ports.MemoryProbe
	metrics    ports.MetricsRecorder
	cache      *cache.Cache
	pool       *typecheck.Pool
	aggregator *aggregator.Aggregator
	scheduler  *scheduler.Scheduler
	renderer   ports.Renderer
	console    *linear.Renderer
	ui         *tui.Renderer
	last       *lastReport
	provider   *sdktrace.TracerProvider
	tracer     *telemetry.OTelTracer
	css        ports.CSSGenerator
	lint       ports.LintRunner
	journal    ports.Journal
}

type sessionOptions struct {
	mode        domain.Mode
	clean       bool
	plain       bool
	interactive bool
}

// lastReport is the last summary handed to the renderer.
type lastReport struct {
	summary domain.Summary
	results []domain.CompilationResult
	errs    []domain.CompilationError
}

// open assembles the pipeline for cfg and loads the persisted cache. In
// interactive mode progress goes to the TUI and the console renderer only
// prints the final summary.
func (a *App) open(ctx context.Context, cfg *domain.Config, opts sessionOptions) *session {
	runner := shell.NewRunner(a.logger)

	rendererOpts := []linear.Option{linear.WithVerbose(cfg.Verbose)}
	if opts.plain {
		rendererOpts = append(rendererOpts, linear.WithProfile(termenv.Ascii))
	}
	console := linear.NewRenderer(a.stdout, a.stderr, rendererOpts...)

	var renderer ports.Renderer = console
	var ui *tui.Renderer
	if opts.interactive && !opts.plain {
		model := tui.NewModel(a.stderr, cfg.SourceRoot)
		ui = tui.NewRenderer(&model, tea.WithOutput(a.stderr), tea.WithAltScreen(), tea.WithContext(ctx))
		if err := ui.Start(ctx); err != nil {
			a.logger.Warn("cannot start interactive view: " + err.Error())
			ui = nil
		} else {
			renderer = ui
		}
	}

	fp := fingerprint.New(cfg, fingerprint.WithFs(a.fs))
	c := cache.New(cfg.Cache, fp, a.logger,
		cache.WithFs(a.fs),
		cache.WithMemoryProbe(a.probe),
		cache.WithMetrics(a.metrics),
	)

	var analyzer ports.Analyzer = typecheck.NoopAnalyzer{}
	if len(cfg.TypeCheck.Command) > 0 {
		analyzer = typecheck.NewCommandAnalyzer(runner, cfg.TypeCheck.Command, cfg.Root, cfg.TypeCheck.Config)
	}
	pool := typecheck.New(analyzer, a.logger,
		typecheck.WithWorkers(cfg.TypeCheck.Workers),
		typecheck.WithTimeout(cfg.TypeCheck.Timeout),
		typecheck.WithIdleTimeout(cfg.TypeCheck.IdleTimeout),
		typecheck.WithNoisePolicy(typecheck.NewNoisePolicy(cfg.TypeCheck.NoiseCodes, cfg.TypeCheck.NoisePatterns)),
	)
	pool.SetMode(opts.mode)

	agg := aggregator.New()
	provider := telemetry.NewProvider(renderer)
	tracer := telemetry.NewOTelTracer("kiln", renderer)

	s := &session{
		cfg:        cfg,
		mode:       opts.mode,
		fs:         a.fs,
		logger:     a.logger,
		probe:      a.probe,
		metrics:    a.metrics,
		cache:      c,
		pool:       pool,
		aggregator: agg,
		renderer:   renderer,
		console:    console,
		ui:         ui,
		provider:   provider,
		tracer:     tracer,
	}
	s.scheduler = scheduler.NewScheduler(cfg, scheduler.Deps{
		Cache:      c,
		Stages:     stagesFor(cfg, runner),
		Checker:    pool,
		Aggregator: agg,
		Tracer:     tracer,
		Metrics:    a.metrics,
		Probe:      a.probe,
		Logger:     a.logger,
	}, scheduler.WithFs(a.fs))

	if len(cfg.Stages.CSS) > 0 {
		s.css = shell.NewCSSGenerator(runner, cfg.Stages.CSS, cfg.Root)
	}
	if cfg.Lint.Enabled && len(cfg.Stages.Lint) > 0 {
		s.lint = shell.NewLintRunner(runner, a.fs, cfg.Stages.Lint, cfg.Lint, cfg.Root)
	}

	if j, err := journal.Open(domain.DefaultJournalPath(cfg.Root)); err != nil {
		a.logger.Warn("build journal unavailable: " + err.Error())
	} else {
		s.journal = j
	}

	s.loadCache(opts.clean)
	return s
}

// stagesFor maps configured stage commands to collaborators. Unconfigured
// optional stages stay nil and are skipped.
func stagesFor(cfg *domain.Config, runner *shell.Runner) scheduler.Stages {
	stages := scheduler.Stages{Standardize: shell.Identity{}}
	if len(cfg.Stages.Template) > 0 {
		stages.Template = shell.NewTemplateStage(runner, cfg.Stages.Template, cfg.Root)
	}
	if len(cfg.Stages.Typed) > 0 {
		stages.Typed = shell.NewTypedStage(runner, cfg.Stages.Typed, cfg.Root)
	}
	if len(cfg.Stages.Standardize) > 0 {
		stages.Standardize = shell.NewStandardizeStage(runner, cfg.Stages.Standardize, cfg.Root)
	}
	if len(cfg.Stages.Minify) > 0 {
		stages.Minify = shell.NewMinifyStage(runner, cfg.Stages.Minify, cfg.Root)
	}
	return stages
}

// loadCache restores the persisted cache, or deletes it first when clean is
// set. Failures are recorded as warnings and leave the cache empty.
func (s *session) loadCache(clean bool) {
	if clean {
		if err := s.cache.Clear(); err != nil {
			s.cacheWarning("cannot clear cache", err)
		}
		return
	}
	if err := s.cache.Load(); err != nil {
		s.cacheWarning("cannot load cache", err)
	}
}

func (s *session) saveCache() {
	if err := s.cache.Save(); err != nil {
		s.cacheWarning("cannot save cache", err)
	}
}

// relieve runs the periodic heap cleanup outside of batches.
func (s *session) relieve() {
	s.probe.Collect()
	if n := s.cache.Relieve(scheduler.CleanupEvictions); n > 0 {
		s.logger.Debug(fmt.Sprintf("heap above high-water mark, evicted %d cache entries", n))
	}
}

func (s *session) cacheWarning(msg string, err error) {
	s.logger.Warn(msg + ": " + err.Error())
	s.aggregator.Record(domain.CompilationError{
		File:     s.cfg.Cache.File,
		Stage:    domain.StageCacheIO,
		Message:  msg,
		Severity: domain.StageCacheIO.Severity(),
		Details:  err.Error(),
	})
}

// sourceFiles lists every source file under the source root in lexical order.
func (s *session) sourceFiles() ([]string, error) {
	var files []string
	err := afero.Walk(s.fs, s.cfg.SourceRoot, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != s.cfg.SourceRoot && skipDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if s.cfg.IsSource(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrNoSourceFiles, err.Error()), "root", s.cfg.SourceRoot)
	}
	if len(files) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrNoSourceFiles, "source root is empty"), "root", s.cfg.SourceRoot)
	}
	return files, nil
}

// batch compiles every source file, then runs the once-per-batch
// subsystems and drops warm worker state unless the pool is kept warm.
func (s *session) batch(ctx context.Context) ([]domain.FileResult, error) {
	files, err := s.sourceFiles()
	if err != nil {
		return nil, err
	}

	results := s.scheduler.CompileMany(ctx, files)
	s.afterBatch(ctx)
	if s.mode == domain.ModeBatch {
		s.pool.Recycle()
	}
	return results, nil
}

// afterBatch runs CSS generation and linting. Both are best effort: their
// problems are warnings and never fail the build.
func (s *session) afterBatch(ctx context.Context) {
	if s.css != nil {
		res := s.css.Generate(ctx)
		s.aggregator.RecordStage(domain.StageCSS, "", res.Success)
		if !res.Success {
			s.aggregator.Record(domain.CompilationError{
				Stage:    domain.StageCSS,
				Message:  res.Message,
				Severity: domain.StageCSS.Severity(),
				Details:  res.Details,
			})
		} else {
			s.logger.Debug(res.Message)
		}
	}

	if s.lint != nil {
		diags, err := s.lint.Lint(ctx)
		s.aggregator.RecordStage(domain.StageLint, "", err == nil && len(diags) == 0)
		if err != nil {
			s.aggregator.Record(domain.CompilationError{
				Stage:    domain.StageLint,
				Message:  "lint failed",
				Severity: domain.StageLint.Severity(),
				Details:  err.Error(),
			})
		}
		for _, d := range diags {
			s.aggregator.Record(domain.CompilationError{
				File:     d.File,
				Stage:    domain.StageLint,
				Message:  fmt.Sprintf("%d:%d: %s", d.Line, d.Column, d.Message),
				Severity: domain.StageLint.Severity(),
			})
		}
	}
}

// begin opens a journal record. Journal failures never fail a build.
func (s *session) begin(ctx context.Context, mode domain.Mode) string {
	if s.journal == nil {
		return ""
	}
	id, err := s.journal.Begin(ctx, mode)
	if err != nil {
		s.logger.Warn("cannot write build journal: " + err.Error())
		return ""
	}
	return id
}

// report persists the cache, prints the summary, records metrics and closes
// the journal record. It returns the summary of this invocation or cycle.
func (s *session) report(ctx context.Context, id string, mode domain.Mode, results []domain.FileResult, elapsed time.Duration) domain.Summary {
	s.saveCache()
	_ = s.renderer.Flush()

	summary := s.aggregator.Summary(results, elapsed)
	errs := s.aggregator.Errors()
	stages := s.aggregator.Results()
	s.renderer.OnSummary(summary, stages, errs)
	s.last = &lastReport{summary: summary, results: stages, errs: errs}
	s.metrics.ObserveBuildDuration(mode, elapsed)

	if s.journal != nil && id != "" {
		if err := s.journal.Finish(ctx, id, summary, errs); err != nil {
			s.logger.Warn("cannot write build journal: " + err.Error())
		}
	}
	return summary
}

// cancelOnQuit cancels the session when the user quits the interactive view.
func (s *session) cancelOnQuit(ctx context.Context, cancel context.CancelFunc) {
	if s.ui == nil {
		return
	}
	go func() {
		select {
		case <-s.ui.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
}

// flushTraces delivers all span output still queued for the renderer.
func (s *session) flushTraces(ctx context.Context) {
	if err := s.tracer.Shutdown(ctx); err != nil {
		s.logger.Debug("tracer shutdown: " + err.Error())
	}
}

// close releases workers, telemetry and the journal. It runs to completion
// even when ctx is already cancelled.
func (s *session) close(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	if err := s.pool.Close(); err != nil {
		s.logger.Debug("worker pool close: " + err.Error())
	}
	s.flushTraces(ctx)
	if err := s.provider.Shutdown(ctx); err != nil {
		s.logger.Debug("tracer provider shutdown: " + err.Error())
	}
	_ = s.renderer.Flush()
	if s.ui != nil {
		_ = s.ui.Stop()
		if err := s.ui.Wait(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			s.logger.Debug("interactive view: " + err.Error())
		}
		if s.last != nil {
			s.console.OnSummary(s.last.summary, s.last.results, s.last.errs)
		}
	}
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.logger.Debug("journal close: " + err.Error())
		}
	}
}
