package tui_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/tui"
	"go.trai.ch/kiln/internal/core/domain"
)

func newTestRenderer(t *testing.T) (*tui.Renderer, *tui.Model) {
	t.Helper()
	model := tui.NewModel(io.Discard, "/proj/src")
	renderer := tui.NewRenderer(
		&model,
		tea.WithInput(strings.NewReader("")),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
		tea.WithoutRenderer(),
	)
	require.NoError(t, renderer.Start(context.Background()))
	return renderer, &model
}

func TestRenderer_Lifecycle(t *testing.T) {
	renderer, _ := newTestRenderer(t)

	require.NoError(t, renderer.Stop())
	require.NoError(t, renderer.Wait())

	select {
	case <-renderer.Done():
	case <-time.After(time.Second):
		t.Fatal("Done was not closed after the program exited")
	}
}

func TestRenderer_ForwardsEvents(t *testing.T) {
	renderer, model := newTestRenderer(t)
	start := time.Now()

	renderer.OnPlanEmit([]string{"a.ts", "b.ts"})
	renderer.OnFileStart("s1", "", "a.ts", start)
	renderer.OnFileLog("s1", []byte("hello\n"))
	renderer.OnFileComplete("s1", start.Add(time.Second), nil)
	renderer.OnFileStart("s2", "", "b.ts", start)
	renderer.OnFileComplete("s2", start.Add(time.Second), errors.New("boom"))
	renderer.OnSummary(domain.Summary{Total: 2, Succeeded: 1, Failed: 1}, nil, nil)
	require.NoError(t, renderer.Flush())

	require.NoError(t, renderer.Stop())
	require.NoError(t, renderer.Wait())

	require.Len(t, model.Files, 2)
	assert.Equal(t, tui.StatusDone, model.FileMap["a.ts"].Status)
	assert.Equal(t, tui.StatusError, model.FileMap["b.ts"].Status)
	require.NotNil(t, model.Summary)
	assert.Equal(t, 1, model.Summary.Failed)
}

func TestRenderer_SendAfterExitDoesNotBlock(t *testing.T) {
	renderer, _ := newTestRenderer(t)
	require.NoError(t, renderer.Stop())
	require.NoError(t, renderer.Wait())

	done := make(chan struct{})
	go func() {
		renderer.OnFileStart("s1", "", "a.ts", time.Now())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("OnFileStart blocked after the program exited")
	}
}
