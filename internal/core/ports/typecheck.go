package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

//go:generate mockgen -source=typecheck.go -destination=mocks/mock_typecheck.go -package=mocks

// TypeChecker offloads type analysis to a pool of background workers.
type TypeChecker interface {
	// Check submits req and waits for the correlated response.
	// The request ID is assigned by the pool.
	Check(ctx context.Context, req domain.WorkerRequest) (domain.WorkerResponse, error)

	// SetMode tunes the pool lifecycle. It never changes the protocol.
	SetMode(mode domain.Mode)

	// Recycle drops warm worker state at the end of a batch.
	Recycle()

	// Close stops every worker. Pending requests fail.
	Close() error
}

// Analyzer is the language service a worker runs against an ephemeral host.
type Analyzer interface {
	// Syntactic returns parse diagnostics for file.
	Syntactic(ctx context.Context, host *domain.AnalysisHost, file string) ([]domain.Diagnostic, error)

	// Semantic returns type diagnostics for file.
	Semantic(ctx context.Context, host *domain.AnalysisHost, file string) ([]domain.Diagnostic, error)
}
