package app

import (
	"io"
	"slices"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/metrics"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestStartHousekeeping(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	probe := mocks.NewMockMemoryProbe(ctrl)
	probe.EXPECT().HeapAlloc().Return(uint64(0)).AnyTimes()
	probe.EXPECT().SystemUsage().Return(0.0, false).AnyTimes()
	probe.EXPECT().Collect().AnyTimes()

	reg := prom.NewRegistry()
	a := New(mocks.NewMockConfigLoader(ctrl), log, probe, metrics.NewPrometheusRecorder(reg), reg, nil).
		WithOutput(io.Discard, io.Discard)
	s := a.open(t.Context(), domain.DefaultConfig(t.TempDir()), sessionOptions{mode: domain.ModeWatch, plain: true})
	defer s.close(t.Context())

	sched, err := startHousekeeping(s)
	require.NoError(t, err)
	defer func() { _ = sched.Shutdown() }()

	var names []string
	for _, j := range sched.Jobs() {
		names = append(names, j.Name())
	}
	slices.Sort(names)
	assert.Equal(t, []string{jobCacheRelieve, jobCacheSave}, names)

	// Both tasks are safe to run directly between cycles.
	s.saveCache()
	s.relieve()
	assert.FileExists(t, s.cfg.Cache.File)
}
