package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/cmd/kiln/commands"
	"go.trai.ch/kiln/internal/adapters/detector"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/build"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type mockApp struct {
	buildFunc   func(ctx context.Context, opts app.BuildOptions) error
	watchFunc   func(ctx context.Context, opts app.WatchOptions) error
	cleanFunc   func(ctx context.Context) error
	historyFunc func(ctx context.Context, n int) ([]domain.Invocation, error)
}

func (m *mockApp) Build(ctx context.Context, opts app.BuildOptions) error {
	if m.buildFunc != nil {
		return m.buildFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) Watch(ctx context.Context, opts app.WatchOptions) error {
	if m.watchFunc != nil {
		return m.watchFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) Clean(ctx context.Context) error {
	if m.cleanFunc != nil {
		return m.cleanFunc(ctx)
	}
	return nil
}

func (m *mockApp) History(ctx context.Context, n int) ([]domain.Invocation, error) {
	if m.historyFunc != nil {
		return m.historyFunc(ctx, n)
	}
	return nil, nil
}

func newCLI(a commands.Application, args ...string) (*commands.CLI, *bytes.Buffer) {
	cli := commands.New(a, nil)
	cli.SetDetector(func() detector.LogFormat { return detector.FormatPretty })
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	return cli, buf
}

func TestCommands_Build(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.BuildOptions
		called := false

		mock := &mockApp{
			buildFunc: func(_ context.Context, opts app.BuildOptions) error {
				captured = opts
				called = true
				return nil
			},
		}

		cli, _ := newCLI(mock, "build", "src/a.ts", "src/b.vue", "--clean", "-j", "4", "--production", "--verbose")
		require.NoError(t, cli.Execute(context.Background()))

		assert.True(t, called)
		assert.Equal(t, []string{"src/a.ts", "src/b.vue"}, captured.Files)
		assert.True(t, captured.Clean)
		assert.False(t, captured.Plain)
		assert.Equal(t, app.Overrides{Production: true, Verbose: true, Concurrency: 4}, captured.Overrides)
	})

	t.Run("batch without files", func(t *testing.T) {
		var captured app.BuildOptions
		mock := &mockApp{
			buildFunc: func(_ context.Context, opts app.BuildOptions) error {
				captured = opts
				return nil
			},
		}

		cli, _ := newCLI(mock, "build")
		require.NoError(t, cli.Execute(context.Background()))
		assert.Empty(t, captured.Files)
		assert.Equal(t, app.Overrides{}, captured.Overrides)
	})

	t.Run("json log format disables colour", func(t *testing.T) {
		var captured app.BuildOptions
		mock := &mockApp{
			buildFunc: func(_ context.Context, opts app.BuildOptions) error {
				captured = opts
				return nil
			},
		}

		cli, _ := newCLI(mock, "build", "--log-format", "json")
		require.NoError(t, cli.Execute(context.Background()))
		assert.True(t, captured.Plain)
	})

	t.Run("returns error on build failure", func(t *testing.T) {
		mock := &mockApp{
			buildFunc: func(_ context.Context, _ app.BuildOptions) error {
				return errors.New("simulated error")
			},
		}

		cli, _ := newCLI(mock, "build")
		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_LoggerFormat(t *testing.T) {
	tests := []struct {
		name     string
		detected detector.LogFormat
		args     []string
		json     bool
		verbose  bool
	}{
		{"Detected Pretty", detector.FormatPretty, []string{"clean"}, false, false},
		{"Detected JSON", detector.FormatJSON, []string{"clean"}, true, false},
		{"Flag Overrides Detection", detector.FormatJSON, []string{"clean", "--log-format", "pretty"}, false, false},
		{"Verbose", detector.FormatPretty, []string{"clean", "-v"}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			log := mocks.NewMockLogger(ctrl)
			log.EXPECT().SetJSON(tt.json)
			log.EXPECT().SetVerbose(tt.verbose)

			cli := commands.New(&mockApp{}, log)
			cli.SetDetector(func() detector.LogFormat { return tt.detected })
			cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
			cli.SetArgs(tt.args)

			require.NoError(t, cli.Execute(context.Background()))
		})
	}
}

func TestCommands_Watch(t *testing.T) {
	var captured app.WatchOptions
	mock := &mockApp{
		watchFunc: func(_ context.Context, opts app.WatchOptions) error {
			captured = opts
			return nil
		},
	}

	cli, _ := newCLI(mock, "watch", "--clean", "--concurrency", "2", "--tui")
	require.NoError(t, cli.Execute(context.Background()))
	assert.True(t, captured.Clean)
	assert.True(t, captured.Interactive)
	assert.Equal(t, 2, captured.Concurrency)

	cli, _ = newCLI(mock, "watch", "src/a.ts")
	assert.Error(t, cli.Execute(context.Background()))
}

func TestCommands_Clean(t *testing.T) {
	called := false
	mock := &mockApp{
		cleanFunc: func(context.Context) error {
			called = true
			return nil
		},
	}

	cli, _ := newCLI(mock, "clean")
	require.NoError(t, cli.Execute(context.Background()))
	assert.True(t, called)
}

func TestCommands_History(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)

	t.Run("prints a table", func(t *testing.T) {
		var limit int
		mock := &mockApp{
			historyFunc: func(_ context.Context, n int) ([]domain.Invocation, error) {
				limit = n
				return []domain.Invocation{
					{
						ID:         "b",
						Mode:       domain.ModeWatch,
						StartedAt:  started.Add(time.Minute),
						FinishedAt: started.Add(time.Minute + time.Second),
						Summary:    domain.Summary{Total: 2, Succeeded: 1, Failed: 1, Warnings: 3, Duration: 1500 * time.Millisecond},
					},
					{ID: "a", Mode: domain.ModeBatch, StartedAt: started},
				}, nil
			},
		}

		cli, buf := newCLI(mock, "history", "-n", "5")
		require.NoError(t, cli.Execute(context.Background()))

		assert.Equal(t, 5, limit)
		out := buf.String()
		assert.Contains(t, out, "STARTED")
		assert.Contains(t, out, "2026-03-01 12:01:00")
		assert.Contains(t, out, "watch")
		assert.Contains(t, out, "1.5s")
		assert.Contains(t, out, "batch")
		assert.Contains(t, out, "unfinished")
	})

	t.Run("filters by mode", func(t *testing.T) {
		mock := &mockApp{
			historyFunc: func(context.Context, int) ([]domain.Invocation, error) {
				return []domain.Invocation{
					{ID: "b", Mode: domain.ModeWatch, StartedAt: started.Add(time.Minute)},
					{ID: "a", Mode: domain.ModeBatch, StartedAt: started},
				}, nil
			},
		}

		cli, buf := newCLI(mock, "history", "--mode", "all")
		require.NoError(t, cli.Execute(context.Background()))

		out := buf.String()
		assert.Contains(t, out, "batch")
		assert.NotContains(t, out, "watch")
	})

	t.Run("rejects unknown mode", func(t *testing.T) {
		mock := &mockApp{
			historyFunc: func(context.Context, int) ([]domain.Invocation, error) {
				return []domain.Invocation{{ID: "a", Mode: domain.ModeBatch, StartedAt: started}}, nil
			},
		}
		cli, _ := newCLI(mock, "history", "--mode", "parallel")
		assert.ErrorIs(t, cli.Execute(context.Background()), domain.ErrInvalidMode)
	})

	t.Run("empty history", func(t *testing.T) {
		cli, buf := newCLI(&mockApp{}, "history")
		require.NoError(t, cli.Execute(context.Background()))
		assert.Contains(t, buf.String(), "No builds recorded yet.")
	})

	t.Run("returns error", func(t *testing.T) {
		mock := &mockApp{
			historyFunc: func(context.Context, int) ([]domain.Invocation, error) {
				return nil, domain.ErrJournalReadFailed
			},
		}
		cli, _ := newCLI(mock, "history")
		assert.ErrorIs(t, cli.Execute(context.Background()), domain.ErrJournalReadFailed)
	})
}

func TestCommands_Version(t *testing.T) {
	cli, buf := newCLI(&mockApp{}, "version")
	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, buf.String(), "kiln version "+build.Version)
}
