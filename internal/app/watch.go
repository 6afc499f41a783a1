package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.trai.ch/kiln/internal/adapters/metrics"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// WatchOptions configures watch mode.
type WatchOptions struct {
	// Clean deletes the persisted cache before the initial build.
	Clean bool
	// Plain disables colour in progress output.
	Plain bool
	// Interactive shows progress in the terminal UI. Ignored when Plain is set.
	Interactive bool
	Overrides
}

// Watch runs an initial batch build and then rebuilds whatever changes until
// ctx is cancelled. Build failures are reported and never end the watch.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	cfg, err := a.loadConfig(opts.Overrides)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := a.open(ctx, cfg, sessionOptions{mode: domain.ModeWatch, clean: opts.Clean, plain: opts.Plain, interactive: opts.Interactive})
	defer s.close(ctx)
	s.cancelOnQuit(ctx, cancel)

	housekeeping, err := startHousekeeping(s)
	if err != nil {
		return err
	}
	defer func() { _ = housekeeping.Shutdown() }()

	start := time.Now()
	id := s.begin(ctx, domain.ModeWatch)
	results, err := s.batch(ctx)
	if err != nil {
		a.logger.Warn(err.Error())
	}
	s.report(ctx, id, domain.ModeWatch, results, time.Since(start))

	w, err := a.newWatcher(cfg.Debounce)
	if err != nil {
		return err
	}
	if err := w.Start(ctx, a.watchRoots(cfg)...); err != nil {
		_ = w.Stop()
		return err
	}
	a.logger.Info(fmt.Sprintf("watching %s", cfg.SourceRoot))

	g, ctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			a.logger.Info("serving metrics on " + cfg.MetricsAddr)
			return metrics.Serve(ctx, cfg.MetricsAddr, a.registry)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		return w.Stop()
	})

	g.Go(func() error {
		defer cancel()
		for ev := range w.Events() {
			s.handle(ctx, ev)
		}
		return nil
	})

	return g.Wait()
}

// watchRoots returns the source root plus the dependency state files that exist.
func (a *App) watchRoots(cfg *domain.Config) []string {
	roots := []string{cfg.SourceRoot}
	for _, f := range []string{cfg.Dependencies.Manifest, cfg.Dependencies.Lockfile} {
		if ok, _ := afero.Exists(a.fs, f); ok {
			roots = append(roots, f)
		}
	}
	return roots
}

// handle runs one watch cycle for ev. A dependency state change rebuilds
// everything. A changed source rebuilds it with its dependents. A removed
// source loses its artifact and cache entry, and its dependents are rebuilt.
func (s *session) handle(ctx context.Context, ev ports.WatchEvent) {
	path := filepath.Clean(ev.Path)

	if s.cfg.IsDependencyState(path) {
		s.logger.Info("dependency state changed, rebuilding everything")
		s.cycle(ctx, func() []domain.FileResult {
			s.cache.InvalidateAll()
			results, err := s.batch(ctx)
			if err != nil {
				s.logger.Warn(err.Error())
			}
			return results
		})
		return
	}

	if !s.cfg.IsSource(path) {
		return
	}
	if _, err := s.cfg.OutputPathFor(path); err != nil {
		return
	}

	s.cycle(ctx, func() []domain.FileResult {
		dependents := s.cache.InvalidateCascade(path)

		var targets []string
		switch ev.Operation {
		case ports.OpRemove, ports.OpRename:
			s.remove(path)
		default:
			targets = append(targets, path)
		}
		targets = append(targets, dependents...)

		results := make([]domain.FileResult, 0, len(targets))
		for _, t := range targets {
			if ctx.Err() != nil {
				break
			}
			results = append(results, s.scheduler.CompileOne(ctx, t, domain.ModeWatch))
		}
		return results
	})
}

// cycle brackets one rebuild with a fresh aggregator and a journal record.
func (s *session) cycle(ctx context.Context, rebuild func() []domain.FileResult) {
	s.aggregator.Reset()
	start := time.Now()
	id := s.begin(ctx, domain.ModeWatch)
	results := rebuild()
	s.report(ctx, id, domain.ModeWatch, results, time.Since(start))
}

// remove deletes the artifact and cache entry of a deleted source.
func (s *session) remove(path string) {
	s.cache.Delete(path)

	out, err := s.cfg.OutputPathFor(path)
	if err != nil {
		return
	}
	if err := s.fs.Remove(out); err != nil && !os.IsNotExist(err) {
		s.logger.Warn(zerr.With(zerr.Wrap(err, "cannot remove artifact"), "path", out).Error())
		return
	}
	s.logger.Debug("removed " + out)
}
