package ports

import (
	"context"
	"io"
)

// SpanConfig holds span creation options.
type SpanConfig struct {
	// Attributes are set on the span when it starts.
	Attributes map[string]any
}

// SpanOption configures a span.
type SpanOption func(*SpanConfig)

// WithAttribute sets an attribute at span start.
func WithAttribute(key string, value any) SpanOption {
	return func(c *SpanConfig) {
		if c.Attributes == nil {
			c.Attributes = make(map[string]any)
		}
		c.Attributes[key] = value
	}
}

// Tracer starts spans for files and stages.
//
//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks
type Tracer interface {
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
	// EmitPlan records the files about to be built on the current span.
	EmitPlan(ctx context.Context, files []string)
	Shutdown(ctx context.Context) error
}

// Span is one traced unit of work. Writes become span log output.
type Span interface {
	io.Writer
	End()
	RecordError(err error)
	SetAttribute(key string, value any)
}
