package ports

import (
	"time"

	"go.trai.ch/kiln/internal/core/domain"
)

// Renderer presents build progress. It is fed by the telemetry bridge, so the
// same span stream drives any output format.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// OnPlanEmit is called when a set of files is about to be built.
	OnPlanEmit(files []string)

	// OnFileStart is called when a span starts.
	// parentID is empty for root spans.
	OnFileStart(spanID, parentID, name string, startTime time.Time)

	// OnFileLog is called when a span emits output.
	OnFileLog(spanID string, data []byte)

	// OnFileComplete is called when a span ends. err is nil on success.
	OnFileComplete(spanID string, endTime time.Time, err error)

	// OnSummary is called once the invocation has finished.
	OnSummary(summary domain.Summary, results []domain.CompilationResult, errs []domain.CompilationError)

	// Flush writes any buffered output.
	Flush() error
}
