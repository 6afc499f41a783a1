package app

import (
	"context"
	"errors"
	"fmt"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// Clean removes the persisted cache, the build journal and the destination
// root of the project.
func (a *App) Clean(_ context.Context) error {
	cfg, err := a.loadConfig(Overrides{})
	if err != nil {
		return err
	}

	var errs error
	remove := func(path, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := a.fs.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)), "path", path))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	remove(cfg.Cache.File, "compilation cache")
	remove(domain.DefaultJournalPath(cfg.Root), "build journal")
	remove(cfg.DestRoot, "build output")

	return errs
}
