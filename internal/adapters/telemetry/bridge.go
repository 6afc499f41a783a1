package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// fileAttr marks stage spans with the file they belong to.
const fileAttr attribute.Key = "kiln.file"

// Bridge is a span processor that reports file and stage spans to a Renderer.
type Bridge struct {
	renderer ports.Renderer
}

// NewBridge returns a Bridge for renderer. A nil renderer makes it inert.
func NewBridge(renderer ports.Renderer) *Bridge {
	return &Bridge{renderer: renderer}
}

// OnStart reports a started span with its parent, if any.
func (b *Bridge) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	id, ok := b.spanID(s.SpanContext())
	if !ok {
		return
	}

	parentID, _ := b.spanID(trace.SpanContextFromContext(parent))
	b.renderer.OnFileStart(id, parentID, s.Name(), s.StartTime())
}

// OnEnd reports a finished span together with the error its status carries.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if id, ok := b.spanID(s.SpanContext()); ok {
		b.renderer.OnFileComplete(id, s.EndTime(), statusError(s))
	}
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error { return nil }

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error { return nil }

func (b *Bridge) spanID(sc trace.SpanContext) (string, bool) {
	if b.renderer == nil || !sc.IsValid() {
		return "", false
	}
	return sc.SpanID().String(), true
}

// statusError converts an error status into an error. Stage spans name the
// stage so the message reads on its own once folded into the file's output.
func statusError(s sdktrace.ReadOnlySpan) error {
	if s.Status().Code != codes.Error {
		return nil
	}

	desc := s.Status().Description
	if desc == "" {
		desc = "build failed"
	}
	for _, kv := range s.Attributes() {
		if kv.Key == fileAttr {
			return fmt.Errorf("%s: %s", s.Name(), desc)
		}
	}
	return errors.New(desc)
}
