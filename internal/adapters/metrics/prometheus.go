package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ ports.MetricsRecorder = (*PrometheusRecorder)(nil)

// Eviction reasons.
const (
	EvictionLRU   = "lru"
	EvictionHeap  = "heap"
	EvictionStale = "stale"
)

// PrometheusRecorder implements ports.MetricsRecorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration *prom.HistogramVec
	stageResults  *prom.CounterVec
	cacheLookups  *prom.CounterVec
	evictions     *prom.CounterVec
	concurrency   prom.Gauge
	buildDuration *prom.HistogramVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "kiln",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "kiln",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		cacheLookups: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "kiln",
			Name:      "cache_lookups_total",
			Help:      "Compilation cache lookups by outcome",
		}, []string{"result"}),
		evictions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "kiln",
			Name:      "cache_evictions_total",
			Help:      "Compilation cache evictions by reason",
		}, []string{"reason"}),
		concurrency: prom.NewGauge(prom.GaugeOpts{
			Namespace: "kiln",
			Name:      "batch_concurrency",
			Help:      "Concurrency ceiling of the last batch",
		}),
		buildDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "kiln",
			Name:      "build_duration_seconds",
			Help:      "Total build duration by mode",
			Buckets:   prom.DefBuckets,
		}, []string{"mode"}),
	}
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.cacheLookups, pr.evictions, pr.concurrency, pr.buildDuration)
	return pr
}

// ObserveStageDuration records how long one stage took for one file.
func (p *PrometheusRecorder) ObserveStageDuration(stage domain.Stage, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
}

// IncStageResult counts a stage outcome as success or failed.
func (p *PrometheusRecorder) IncStageResult(stage domain.Stage, ok bool) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(string(stage), outcome(ok, "success", "failed")).Inc()
}

// IncCacheLookup counts a cache lookup as a hit or a miss.
func (p *PrometheusRecorder) IncCacheLookup(hit bool) {
	if p == nil {
		return
	}
	p.cacheLookups.WithLabelValues(outcome(hit, "hit", "miss")).Inc()
}

// IncCacheEviction counts an evicted cache entry under reason.
func (p *PrometheusRecorder) IncCacheEviction(reason string) {
	if p == nil {
		return
	}
	p.evictions.WithLabelValues(reason).Inc()
}

// SetConcurrency publishes the current batch concurrency ceiling.
func (p *PrometheusRecorder) SetConcurrency(n int) {
	if p == nil {
		return
	}
	p.concurrency.Set(float64(n))
}

// ObserveBuildDuration records the wall time of a whole invocation.
func (p *PrometheusRecorder) ObserveBuildDuration(mode domain.Mode, d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.WithLabelValues(string(mode)).Observe(d.Seconds())
}

func outcome(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
