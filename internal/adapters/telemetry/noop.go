package telemetry

import (
	"context"

	"go.trai.ch/kiln/internal/core/ports"
)

var _ ports.Tracer = NoOpTracer{}

// NoOpTracer discards every span. It is used where no renderer is attached,
// such as the history command.
type NoOpTracer struct{}

// NewNoOpTracer returns a NoOpTracer.
func NewNoOpTracer() NoOpTracer {
	return NoOpTracer{}
}

// Start returns ctx unchanged and a span that ignores everything.
func (NoOpTracer) Start(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
	return ctx, noOpSpan{}
}

// EmitPlan does nothing.
func (NoOpTracer) EmitPlan(context.Context, []string) {}

// Shutdown does nothing.
func (NoOpTracer) Shutdown(context.Context) error { return nil }

type noOpSpan struct{}

func (noOpSpan) End()                        {}
func (noOpSpan) RecordError(error)           {}
func (noOpSpan) SetAttribute(string, any)    {}
func (noOpSpan) Write(p []byte) (int, error) { return len(p), nil }
