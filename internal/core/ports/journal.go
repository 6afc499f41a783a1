package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// Journal records the history of invocations.
//
//go:generate mockgen -source=journal.go -destination=mocks/mock_journal.go -package=mocks
type Journal interface {
	// Begin opens an invocation record and returns its id.
	Begin(ctx context.Context, mode domain.Mode) (string, error)
	// Finish closes the invocation with its summary and recorded errors.
	Finish(ctx context.Context, id string, summary domain.Summary, errs []domain.CompilationError) error
	// Recent returns up to n invocations, newest first.
	Recent(ctx context.Context, n int) ([]domain.Invocation, error)
	Close() error
}
