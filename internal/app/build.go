package app

import (
	"context"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// BuildOptions configures a one-shot build.
type BuildOptions struct {
	// Files selects individual mode. Empty means a batch over the source root.
	Files []string
	// Clean deletes the persisted cache before loading it.
	Clean bool
	// Plain disables colour in progress output.
	Plain bool
	// Interactive shows progress in the terminal UI. Ignored when Plain is set.
	Interactive bool
	Overrides
}

// Build compiles the requested files one at a time, or every source file as
// a batch when none are given. It returns an error wrapping
// domain.ErrBuildFailed when any file failed.
func (a *App) Build(ctx context.Context, opts BuildOptions) error {
	cfg, err := a.loadConfig(opts.Overrides)
	if err != nil {
		return err
	}

	mode := domain.ModeBatch
	if len(opts.Files) > 0 {
		mode = domain.ModeIndividual
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := a.open(ctx, cfg, sessionOptions{mode: mode, clean: opts.Clean, plain: opts.Plain, interactive: opts.Interactive})
	defer s.close(ctx)
	s.cancelOnQuit(ctx, cancel)

	start := time.Now()
	id := s.begin(ctx, mode)

	var results []domain.FileResult
	if mode == domain.ModeIndividual {
		for _, f := range opts.Files {
			path, err := a.resolve(f)
			if err != nil {
				return err
			}
			results = append(results, s.scheduler.CompileOne(ctx, path, domain.ModeIndividual))
		}
	} else {
		results, err = s.batch(ctx)
		if err != nil {
			s.report(ctx, id, mode, nil, time.Since(start))
			return err
		}
	}

	s.flushTraces(ctx)
	summary := s.report(ctx, id, mode, results, time.Since(start))
	if !summary.OK() {
		return zerr.With(zerr.Wrap(domain.ErrBuildFailed, "one or more files failed"), "failed", summary.Failed)
	}
	return ctx.Err()
}
