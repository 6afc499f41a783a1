package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/adapters/logger"
)

func TestPrettyHandler_Levels(t *testing.T) {
	tests := []struct {
		name       string
		level      slog.Level
		goldenName string
	}{
		{name: "info", level: slog.LevelInfo, goldenName: "handler_info"},
		{name: "warn", level: slog.LevelWarn, goldenName: "handler_warn"},
		{name: "error", level: slog.LevelError, goldenName: "handler_error"},
		{name: "debug filtered", level: slog.LevelDebug, goldenName: "handler_debug_filtered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "1")

			buf := &bytes.Buffer{}
			lg := slog.New(logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
			lg.Log(t.Context(), tt.level, "stage finished")

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestPrettyHandler_Attrs(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	var h slog.Handler = logger.NewPrettyHandler(buf, nil)
	h = h.WithAttrs([]slog.Attr{slog.String("stage", "minification")})
	h = h.WithGroup("file")

	slog.New(h).Info("stage finished", "path", "src/a.ts", "ms", 12)

	g := goldie.New(t)
	g.Assert(t, "handler_attrs", buf.Bytes())
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := logger.NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	assert.False(t, h.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, h.Enabled(t.Context(), slog.LevelWarn))
	assert.True(t, h.Enabled(t.Context(), slog.LevelError))
}

func TestPrettyHandler_LevelVarFollowsChanges(t *testing.T) {
	var lv slog.LevelVar
	lv.Set(slog.LevelInfo)
	h := logger.NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: &lv})

	assert.False(t, h.Enabled(t.Context(), slog.LevelDebug))
	lv.Set(slog.LevelDebug)
	assert.True(t, h.Enabled(t.Context(), slog.LevelDebug))
}
