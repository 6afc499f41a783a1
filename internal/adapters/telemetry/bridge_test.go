package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestBridge_ErrorStatusDescription(t *testing.T) {
	tests := []struct {
		name    string
		desc    string
		wantErr string
	}{
		{"With Description", "2 type error(s)", "2 type error(s)"},
		{"Empty Description", "", "build failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			renderer := mocks.NewMockRenderer(ctrl)

			tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(renderer)))
			defer func() { _ = tp.Shutdown(context.Background()) }()

			renderer.EXPECT().OnFileStart(gomock.Any(), "", "a.ts", gomock.Any())
			renderer.EXPECT().OnFileComplete(gomock.Any(), gomock.Any(), gomock.Any()).
				Do(func(_ string, _ time.Time, err error) {
					assert.EqualError(t, err, tt.wantErr)
				})

			_, span := tp.Tracer("test").Start(t.Context(), "a.ts")
			span.SetStatus(codes.Error, tt.desc)
			span.End()
		})
	}
}

func TestBridge_StageSpan(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(renderer)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	var fileID string
	gomock.InOrder(
		renderer.EXPECT().OnFileStart(gomock.Any(), "", "a.ts", gomock.Any()).
			Do(func(id, _, _ string, _ time.Time) { fileID = id }),
		renderer.EXPECT().OnFileStart(gomock.Any(), gomock.Any(), "minification", gomock.Any()).
			Do(func(_, parentID, _ string, _ time.Time) { assert.Equal(t, fileID, parentID) }),
		renderer.EXPECT().OnFileComplete(gomock.Any(), gomock.Any(), gomock.Any()).
			Do(func(_ string, _ time.Time, err error) {
				assert.EqualError(t, err, "minification: unexpected token")
			}),
		renderer.EXPECT().OnFileComplete(gomock.Any(), gomock.Any(), nil),
	)

	tracer := tp.Tracer("test")
	ctx, file := tracer.Start(t.Context(), "a.ts")
	_, stage := tracer.Start(ctx, "minification")
	stage.SetAttributes(attribute.String("kiln.file", "/proj/src/a.ts"))
	stage.SetStatus(codes.Error, "unexpected token")
	stage.End()
	file.End()
}

func TestBridge_NilRenderer(t *testing.T) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(nil)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("test").Start(t.Context(), "a.ts")
	span.End()

	b := telemetry.NewBridge(nil)
	assert.NoError(t, b.ForceFlush(t.Context()))
	assert.NoError(t, b.Shutdown(t.Context()))
}
