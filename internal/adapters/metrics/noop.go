// Package metrics records build instrumentation.
//
// Components default to NoopRecorder so no call site needs a nil check.
// The Prometheus recorder registers on a private registry and is served over
// HTTP only in watch mode.
package metrics

import (
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ ports.MetricsRecorder = NoopRecorder{}

// NoopRecorder is a MetricsRecorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(domain.Stage, time.Duration) {}
func (NoopRecorder) IncStageResult(domain.Stage, bool)                {}
func (NoopRecorder) IncCacheLookup(bool)                              {}
func (NoopRecorder) IncCacheEviction(string)                          {}
func (NoopRecorder) SetConcurrency(int)                               {}
func (NoopRecorder) ObserveBuildDuration(domain.Mode, time.Duration)  {}
