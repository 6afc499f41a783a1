package metrics_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/metrics"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := metrics.NewPrometheusRecorder(reg)

	pr.ObserveStageDuration(domain.StageMinify, 150*time.Millisecond)
	pr.IncStageResult(domain.StageTyped, true)
	pr.IncStageResult(domain.StageTyped, false)
	pr.IncStageResult(domain.StageTyped, false)
	pr.IncCacheLookup(true)
	pr.IncCacheLookup(false)
	pr.IncCacheEviction(metrics.EvictionLRU)
	pr.SetConcurrency(4)
	pr.ObserveBuildDuration(domain.ModeBatch, time.Second)

	expected := `
# HELP kiln_stage_results_total Stage result counts by outcome
# TYPE kiln_stage_results_total counter
kiln_stage_results_total{result="failed",stage="typed-precompile"} 2
kiln_stage_results_total{result="success",stage="typed-precompile"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "kiln_stage_results_total"))

	expected = `
# HELP kiln_batch_concurrency Concurrency ceiling of the last batch
# TYPE kiln_batch_concurrency gauge
kiln_batch_concurrency 4
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "kiln_batch_concurrency"))

	count, err := testutil.GatherAndCount(reg, "kiln_cache_lookups_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *metrics.PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.IncCacheLookup(true)
		pr.SetConcurrency(1)
	})
}

func TestServeListener(t *testing.T) {
	reg := prom.NewRegistry()
	metrics.NewPrometheusRecorder(reg).IncCacheEviction(metrics.EvictionHeap)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- metrics.ServeListener(ctx, ln, reg) }()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, "http://"+ln.Addr().String()+"/metrics", http.NoBody)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Contains(t, string(body), `kiln_cache_evictions_total{reason="heap"} 1`)

	cancel()
	require.NoError(t, <-done)
}
