// Package telemetry traces files and stages with OpenTelemetry and forwards
// the span stream to a progress renderer.
package telemetry

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/kiln/internal/core/ports"
)

// LogBufferSize is the capacity of the channel feeding span output to the renderer.
const LogBufferSize = 4096

var _ ports.Tracer = (*OTelTracer)(nil)

// NewProvider creates a tracer provider whose spans are reported to renderer
// and registers it as the global provider.
func NewProvider(renderer ports.Renderer, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	opts = append([]sdktrace.TracerProviderOption{sdktrace.WithSpanProcessor(NewBridge(renderer))}, opts...)
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	return tp
}

// fileLog carries a chunk of output written to a span.
type fileLog struct {
	spanID string
	data   []byte
}

// plan announces the files about to be built.
type plan struct {
	files []string
}

// OTelTracer implements ports.Tracer on the global OpenTelemetry provider.
// Span output is batched per span and delivered to the renderer in order
// from a single goroutine.
type OTelTracer struct {
	tracer   trace.Tracer
	renderer ports.Renderer
	logChan  chan any
	done     chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewOTelTracer creates a tracer named name. renderer may be nil, in which
// case span output is kept as span events only.
func NewOTelTracer(name string, renderer ports.Renderer) *OTelTracer {
	t := &OTelTracer{
		tracer:   otel.Tracer(name),
		renderer: renderer,
		logChan:  make(chan any, LogBufferSize),
		done:     make(chan struct{}),
	}
	go t.runLoop()
	return t
}

func (t *OTelTracer) runLoop() {
	defer close(t.done)
	for msg := range t.logChan {
		if t.renderer == nil {
			continue
		}
		switch m := msg.(type) {
		case fileLog:
			t.renderer.OnFileLog(m.spanID, m.data)
		case plan:
			t.renderer.OnPlanEmit(m.files)
		}
	}
}

// send queues msg unless the tracer is shut down. Logs are dropped when the
// buffer is full so a chatty stage cannot stall the build.
func (t *OTelTracer) send(msg any, mustDeliver bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return
	}
	if mustDeliver {
		t.logChan <- msg
		return
	}
	select {
	case t.logChan <- msg:
	default:
	}
}

// Shutdown stops accepting output and waits until everything queued has
// reached the renderer.
func (t *OTelTracer) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.logChan)
	}
	t.mu.Unlock()

	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start creates a span. Attributes from opts are set at start.
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	ctx, span := t.tracer.Start(ctx, name)
	s := &OTelSpan{span: span}
	for k, v := range cfg.Attributes {
		s.SetAttribute(k, v)
	}

	if t.renderer != nil {
		spanID := span.SpanContext().SpanID().String()
		s.batcher = NewLineBatcher(0, 0, func(data []byte) {
			t.send(fileLog{spanID: spanID, data: data}, false)
		})
	}
	return ctx, s
}

// EmitPlan records the planned files on the current span and announces
// them to the renderer.
func (t *OTelTracer) EmitPlan(ctx context.Context, files []string) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("plan_emitted", trace.WithAttributes(
			attribute.StringSlice("files", files),
		))
	}
	t.send(plan{files: files}, true)
}

// OTelSpan implements ports.Span.
type OTelSpan struct {
	span    trace.Span
	batcher *LineBatcher
}

// End flushes pending output and completes the span.
func (s *OTelSpan) End() {
	if s.batcher != nil {
		_ = s.batcher.Close()
	}
	s.span.End()
}

// RecordError records err and marks the span failed.
func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetAttribute adds a key-value pair to the span.
func (s *OTelSpan) SetAttribute(key string, value any) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	case []string:
		s.span.SetAttributes(attribute.StringSlice(key, v))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
	}
}

// Write sends p to the renderer, or records it as a span event when there
// is none.
func (s *OTelSpan) Write(p []byte) (int, error) {
	if s.batcher != nil {
		return s.batcher.Write(p)
	}
	s.span.AddEvent("log", trace.WithAttributes(attribute.String("message", string(p))))
	return len(p), nil
}
