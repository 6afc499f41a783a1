package app

import (
	"context"

	"github.com/spf13/afero"
	"go.trai.ch/kiln/internal/adapters/journal"
	"go.trai.ch/kiln/internal/core/domain"
)

// History returns up to n recent invocations, newest first. A project that
// has never been built has no history.
func (a *App) History(ctx context.Context, n int) ([]domain.Invocation, error) {
	cwd, err := a.cwd()
	if err != nil {
		return nil, err
	}
	root, err := a.configLoader.DiscoverRoot(cwd)
	if err != nil {
		return nil, err
	}

	path := domain.DefaultJournalPath(root)
	if ok, _ := afero.Exists(a.fs, path); !ok {
		return nil, nil
	}

	j, err := journal.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = j.Close() }()

	return j.Recent(ctx, n)
}
