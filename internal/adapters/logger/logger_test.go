package logger_test

import (
	"bytes"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/logger"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// newTestLogger returns a logger writing to a buffer with colours disabled.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name       string
		verbose    bool
		log        func(*logger.Logger)
		goldenName string
	}{
		{
			name:       "info",
			log:        func(l *logger.Logger) { l.Info("built 3 files") },
			goldenName: "info_basic",
		},
		{
			name:       "warn",
			log:        func(l *logger.Logger) { l.Warn("cache file unreadable, starting cold") },
			goldenName: "warn_basic",
		},
		{
			name:       "debug when verbose",
			verbose:    true,
			log:        func(l *logger.Logger) { l.Debug("worker 1 started") },
			goldenName: "debug_verbose",
		},
		{
			name:       "multiline info",
			log:        func(l *logger.Logger) { l.Info("line1\nline2") },
			goldenName: "info_multiline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.SetVerbose(tt.verbose)
			tt.log(lg)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_DebugHiddenByDefault(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Debug("worker 1 started")

	assert.Empty(t, buf.String())
}

func TestLogger_Error(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		goldenName string
	}{
		{
			name:       "standard error",
			err:        os.ErrPermission,
			goldenName: "error_simple",
		},
		{
			name:       "zerr chain",
			err:        zerr.Wrap(zerr.Wrap(errors.New("exit status 2"), "standardizer failed"), "failed to compile src/app.vue"),
			goldenName: "error_chain",
		},
		{
			name:       "sentinel with metadata",
			err:        zerr.With(zerr.Wrap(domain.ErrCacheWriteFailed, "cannot persist cache"), "path", ".kiln/cache.json"),
			goldenName: "error_metadata",
		},
		{
			name:       "metadata on standard error",
			err:        zerr.With(errors.New("connection refused"), "addr", ":9090"),
			goldenName: "error_metadata_wrapped",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Error(tt.err)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Error_Nil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)

	assert.Empty(t, buf.String())
}

func TestLogger_SetJSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	err := zerr.With(zerr.Wrap(errors.New("disk full"), "cannot write artifact"), "path", "dist/a.js")
	lg.Error(err)

	out := buf.String()
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, "cannot write artifact")
	assert.Contains(t, out, "dist/a.js")
	assert.NotContains(t, out, "✗")
}

func TestLogger_FormatSwitching(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.Error(errors.New("pretty"))
	pretty := buf.String()
	buf.Reset()

	lg.SetJSON(true)
	lg.Error(errors.New("json"))
	jsonOut := buf.String()
	buf.Reset()

	lg.SetJSON(false)
	lg.Error(errors.New("pretty again"))
	back := buf.String()

	assert.Contains(t, pretty, "✗ Error: pretty")
	assert.Contains(t, jsonOut, `"error":"json"`)
	assert.Contains(t, back, "✗ Error: pretty again")
}

func TestLogger_VerboseSurvivesFormatSwitch(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetVerbose(true)
	lg.SetJSON(true)

	lg.Debug("probe")

	assert.Contains(t, buf.String(), `"level":"DEBUG"`)
}

func TestLogger_SetOutput_Nil(t *testing.T) {
	require.NotPanics(t, func() {
		lg := logger.New().(*logger.Logger)
		lg.SetOutput(nil)
	})
}

func TestLogger_ConcurrentAccess(t *testing.T) {
	lg, _ := newTestLogger(t)

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			lg.Info("info")
			lg.Warn("warn")
			lg.Error(errors.New("error"))
		})
	}
	wg.Go(func() { lg.SetJSON(true) })
	wg.Go(func() { lg.SetVerbose(true) })
	wg.Wait()
}
