package app_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/config"
	"go.trai.ch/kiln/internal/adapters/metrics"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type harness struct {
	app    *app.App
	reg    *prom.Registry
	root   string
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// newProject writes kiln.yaml and the given sources under a temp directory.
func newProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, domain.ConfigFileName), []byte("version: \"1\"\n"), domain.FilePerm))
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
		require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	}
	return root
}

func newHarness(t *testing.T, ctrl *gomock.Controller, root string, w ports.Watcher) *harness {
	t.Helper()

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	probe := mocks.NewMockMemoryProbe(ctrl)
	probe.EXPECT().HeapAlloc().Return(uint64(0)).AnyTimes()
	probe.EXPECT().SystemUsage().Return(0.0, false).AnyTimes()
	probe.EXPECT().Collect().AnyTimes()

	reg := prom.NewRegistry()
	factory := func(time.Duration) (ports.Watcher, error) {
		if w == nil {
			return nil, errors.New("no watcher")
		}
		return w, nil
	}

	h := &harness{reg: reg, root: root, stdout: new(bytes.Buffer), stderr: new(bytes.Buffer)}
	h.app = app.New(config.NewLoader(log), log, probe, metrics.NewPrometheusRecorder(reg), reg, factory).
		WithOutput(h.stdout, h.stderr).
		WithWorkDir(root)
	return h
}

func (h *harness) path(parts ...string) string {
	return filepath.Join(append([]string{h.root}, parts...)...)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestBuild_Batch(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := newProject(t, map[string]string{
		"src/main.ts":          "import { util } from './lib/util'\n",
		"src/lib/util.ts":      "export const util = 1\n",
		"src/components/A.vue": "<template><div/></template>\n",
		"src/styles.css":       "body {}\n",
	})
	h := newHarness(t, ctrl, root, nil)

	err := h.app.Build(t.Context(), app.BuildOptions{Plain: true})
	require.NoError(t, err)

	assert.Equal(t, "import { util } from './lib/util'\n", readFile(t, h.path("dist", "main.js")))
	assert.Equal(t, "export const util = 1\n", readFile(t, h.path("dist", "lib", "util.js")))
	assert.FileExists(t, h.path("dist", "components", "A.js"))
	assert.NoFileExists(t, h.path("dist", "styles.js"))
	assert.FileExists(t, h.path(".kiln", "cache.json"))

	out := h.stderr.String()
	assert.Contains(t, out, "Building 3 file(s)")
	assert.Contains(t, out, "3 file(s): 3 built, 0 cached, 0 failed, 0 warning(s)")
}

func TestBuild_IndividualUsesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := newProject(t, map[string]string{"src/a.ts": "export const a = 1\n"})
	h := newHarness(t, ctrl, root, nil)

	require.NoError(t, h.app.Build(t.Context(), app.BuildOptions{Files: []string{"src/a.ts"}, Plain: true}))
	assert.Contains(t, h.stderr.String(), "1 file(s): 1 built, 0 cached")

	h.stderr.Reset()
	require.NoError(t, h.app.Build(t.Context(), app.BuildOptions{Files: []string{"src/a.ts"}, Plain: true}))
	assert.Contains(t, h.stderr.String(), "1 file(s): 0 built, 1 cached")

	h.stderr.Reset()
	require.NoError(t, h.app.Build(t.Context(), app.BuildOptions{Files: []string{"src/a.ts"}, Clean: true, Plain: true}))
	assert.Contains(t, h.stderr.String(), "1 file(s): 1 built, 0 cached")
}

func TestBuild_SecondBatchIsFullyCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := newProject(t, map[string]string{
		"src/a.ts": "export const a = 1\n",
		"src/b.ts": "import { a } from './a'\n",
	})
	h := newHarness(t, ctrl, root, nil)

	require.NoError(t, h.app.Build(t.Context(), app.BuildOptions{Plain: true}))
	assert.Contains(t, h.stderr.String(), "2 file(s): 2 built, 0 cached")
	first := map[string]string{
		"a.js": readFile(t, h.path("dist", "a.js")),
		"b.js": readFile(t, h.path("dist", "b.js")),
	}

	h.stderr.Reset()
	require.NoError(t, h.app.Build(t.Context(), app.BuildOptions{Plain: true}))
	assert.Contains(t, h.stderr.String(), "2 file(s): 0 built, 2 cached, 0 failed")
	for name, want := range first {
		assert.Equal(t, want, readFile(t, h.path("dist", name)), name)
	}
}

func TestBuild_CountsEachCacheLookupOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := newProject(t, map[string]string{"src/a.ts": "export const a = 1\n"})
	h := newHarness(t, ctrl, root, nil)

	require.NoError(t, h.app.Build(t.Context(), app.BuildOptions{Files: []string{"src/a.ts"}, Plain: true}))
	require.NoError(t, h.app.Build(t.Context(), app.BuildOptions{Files: []string{"src/a.ts"}, Plain: true}))

	expected := `
# HELP kiln_cache_lookups_total Compilation cache lookups by outcome
# TYPE kiln_cache_lookups_total counter
kiln_cache_lookups_total{result="hit"} 1
kiln_cache_lookups_total{result="miss"} 1
`
	require.NoError(t, testutil.GatherAndCompare(h.reg, strings.NewReader(expected), "kiln_cache_lookups_total"))
}

func TestBuild_FailureReturnsBuildFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := newProject(t, map[string]string{
		"src/a.ts":   "export const a = 1\n",
		"other/b.ts": "export const b = 2\n",
	})
	h := newHarness(t, ctrl, root, nil)

	err := h.app.Build(t.Context(), app.BuildOptions{Files: []string{"src/a.ts", "other/b.ts"}, Plain: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildFailed)
	assert.FileExists(t, h.path("dist", "a.js"))
	assert.Contains(t, h.stderr.String(), "2 file(s): 1 built, 0 cached, 1 failed")
}

func TestBuild_NoSources(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := newProject(t, nil)
	h := newHarness(t, ctrl, root, nil)

	err := h.app.Build(t.Context(), app.BuildOptions{Plain: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoSourceFiles)
}

func TestBuild_ConfigNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := newHarness(t, ctrl, t.TempDir(), nil)

	err := h.app.Build(t.Context(), app.BuildOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigNotFound)
}

func TestBuild_ConfigLoaderError(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load("/work").Return(nil, domain.ErrInvalidConfig)

	a := app.New(loader, mocks.NewMockLogger(ctrl), mocks.NewMockMemoryProbe(ctrl), nil, nil, nil).WithWorkDir("/work")

	err := a.Build(t.Context(), app.BuildOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestClean(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := newProject(t, map[string]string{"src/a.ts": "export const a = 1\n"})
	h := newHarness(t, ctrl, root, nil)

	require.NoError(t, h.app.Build(t.Context(), app.BuildOptions{Plain: true}))
	require.FileExists(t, h.path("dist", "a.js"))

	require.NoError(t, h.app.Clean(t.Context()))
	assert.NoDirExists(t, h.path("dist"))
	assert.NoFileExists(t, h.path(".kiln", "cache.json"))
	assert.NoFileExists(t, h.path(".kiln", "journal.db"))
	assert.FileExists(t, h.path("src", "a.ts"))
}

func TestHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := newProject(t, map[string]string{"src/a.ts": "export const a = 1\n"})
	h := newHarness(t, ctrl, root, nil)

	history, err := h.app.History(t.Context(), 10)
	require.NoError(t, err)
	assert.Empty(t, history)

	require.NoError(t, h.app.Build(t.Context(), app.BuildOptions{Plain: true}))
	require.NoError(t, h.app.Build(t.Context(), app.BuildOptions{Files: []string{"src/a.ts"}, Plain: true}))

	history, err = h.app.History(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.ModeIndividual, history[0].Mode)
	assert.Equal(t, domain.ModeBatch, history[1].Mode)
	assert.True(t, history[1].Finished())
	assert.Equal(t, 1, history[1].Summary.Succeeded)
}

// fakeEvents feeds watch events from a channel. Stop closes the channel.
type fakeEvents struct {
	ch   chan ports.WatchEvent
	once sync.Once
}

func (f *fakeEvents) seq(yield func(ports.WatchEvent) bool) {
	for ev := range f.ch {
		if !yield(ev) {
			return
		}
	}
}

func (f *fakeEvents) stop() error {
	f.once.Do(func() { close(f.ch) })
	return nil
}

func TestWatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := newProject(t, map[string]string{
		"src/a.ts": "export const a = 1\n",
		"src/b.ts": "import { a } from './a'\n",
	})

	events := &fakeEvents{ch: make(chan ports.WatchEvent)}
	w := mocks.NewMockWatcher(ctrl)
	w.EXPECT().Start(gomock.Any(), filepath.Join(root, "src")).Return(nil)
	w.EXPECT().Events().Return(events.seq)
	w.EXPECT().Stop().DoAndReturn(events.stop).MinTimes(1)

	h := newHarness(t, ctrl, root, w)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- h.app.Watch(ctx, app.WatchOptions{Plain: true})
	}()

	send := func(ev ports.WatchEvent) {
		select {
		case events.ch <- ev:
		case <-time.After(5 * time.Second):
			t.Fatal("watch loop did not take the event")
		}
	}

	// The initial batch has built both files once the loop takes an event.
	send(ports.WatchEvent{Path: h.path("README.md"), Operation: ports.OpWrite})
	assert.FileExists(t, h.path("dist", "a.js"))
	assert.FileExists(t, h.path("dist", "b.js"))

	require.NoError(t, os.WriteFile(h.path("src", "a.ts"), []byte("export const a = 2\n"), domain.FilePerm))
	send(ports.WatchEvent{Path: h.path("src", "a.ts"), Operation: ports.OpWrite})
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(h.path("dist", "a.js"))
		return err == nil && string(data) == "export const a = 2\n"
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(h.path("src", "b.ts")))
	send(ports.WatchEvent{Path: h.path("src", "b.ts"), Operation: ports.OpRemove})
	require.Eventually(t, func() bool {
		_, err := os.Stat(h.path("dist", "b.js"))
		return os.IsNotExist(err)
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}

	history, err := h.app.History(t.Context(), 10)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(history), 3)
	assert.Equal(t, domain.ModeWatch, history[0].Mode)
}

func TestWatch_WarmStartRebuildsDependents(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := newProject(t, map[string]string{
		"src/a.ts": "export const a = 1\n",
		"src/b.ts": "import { a } from './a'\n",
	})

	events := &fakeEvents{ch: make(chan ports.WatchEvent)}
	w := mocks.NewMockWatcher(ctrl)
	w.EXPECT().Start(gomock.Any(), filepath.Join(root, "src")).Return(nil)
	w.EXPECT().Events().Return(events.seq)
	w.EXPECT().Stop().DoAndReturn(events.stop).MinTimes(1)

	h := newHarness(t, ctrl, root, w)

	// Warm the persisted cache so the watch starts from cache hits only.
	require.NoError(t, h.app.Build(t.Context(), app.BuildOptions{Plain: true}))

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- h.app.Watch(ctx, app.WatchOptions{Plain: true})
	}()

	send := func(ev ports.WatchEvent) {
		select {
		case events.ch <- ev:
		case <-time.After(5 * time.Second):
			t.Fatal("watch loop did not take the event")
		}
	}

	send(ports.WatchEvent{Path: h.path("README.md"), Operation: ports.OpWrite})

	require.NoError(t, os.WriteFile(h.path("src", "a.ts"), []byte("export const a = 2\n"), domain.FilePerm))
	send(ports.WatchEvent{Path: h.path("src", "a.ts"), Operation: ports.OpWrite})
	// Events are handled in order, so this one is taken after the cycle is done.
	send(ports.WatchEvent{Path: h.path("README.md"), Operation: ports.OpWrite})

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}

	history, err := h.app.History(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, domain.ModeWatch, history[0].Mode)
	assert.Equal(t, 2, history[0].Summary.Total, "the edit rebuilds a.ts and its dependent b.ts")
	assert.Equal(t, 2, history[0].Summary.Succeeded)
	assert.Equal(t, 2, history[1].Summary.Cached)
	assert.Equal(t, "export const a = 2\n", readFile(t, h.path("dist", "a.js")))
}

func TestWatch_WatcherFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := newProject(t, map[string]string{"src/a.ts": "export const a = 1\n"})

	w := mocks.NewMockWatcher(ctrl)
	w.EXPECT().Start(gomock.Any(), gomock.Any()).Return(domain.ErrWatcherStartFailed)
	w.EXPECT().Stop().Return(nil)

	h := newHarness(t, ctrl, root, w)

	err := h.app.Watch(t.Context(), app.WatchOptions{Plain: true})
	assert.ErrorIs(t, err, domain.ErrWatcherStartFailed)
	assert.FileExists(t, h.path("dist", "a.js"))
}
