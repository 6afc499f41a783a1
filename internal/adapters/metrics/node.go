package metrics

import (
	"context"

	"github.com/grindlemire/graft"
	prom "github.com/prometheus/client_golang/prometheus"
)

const (
	// RegistryNodeID identifies the private Prometheus registry.
	RegistryNodeID graft.ID = "adapter.metrics.registry"
	// NodeID identifies the Prometheus recorder.
	NodeID graft.ID = "adapter.metrics"
)

func init() {
	graft.Register(graft.Node[*prom.Registry]{
		ID:        RegistryNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*prom.Registry, error) {
			return prom.NewRegistry(), nil
		},
	})

	graft.Register(graft.Node[*PrometheusRecorder]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{RegistryNodeID},
		Run: func(ctx context.Context) (*PrometheusRecorder, error) {
			reg, err := graft.Dep[*prom.Registry](ctx)
			if err != nil {
				return nil, err
			}
			return NewPrometheusRecorder(reg), nil
		},
	})
}
