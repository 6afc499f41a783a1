package ports

import (
	"time"

	"go.trai.ch/kiln/internal/core/domain"
)

// MetricsRecorder receives build instrumentation.
//
//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type MetricsRecorder interface {
	ObserveStageDuration(stage domain.Stage, d time.Duration)
	IncStageResult(stage domain.Stage, ok bool)
	IncCacheLookup(hit bool)
	// IncCacheEviction counts one evicted entry. reason is lru, heap or stale.
	IncCacheEviction(reason string)
	SetConcurrency(n int)
	ObserveBuildDuration(mode domain.Mode, d time.Duration)
}
