package app

import (
	"context"

	"github.com/grindlemire/graft"
	prom "github.com/prometheus/client_golang/prometheus"
	"go.trai.ch/kiln/internal/adapters/config"
	"go.trai.ch/kiln/internal/adapters/logger"
	"go.trai.ch/kiln/internal/adapters/metrics"
	"go.trai.ch/kiln/internal/adapters/sysmem"
	"go.trai.ch/kiln/internal/adapters/watcher"
	"go.trai.ch/kiln/internal/core/ports"
)

// NodeID is the unique identifier for the application Graft node.
const NodeID graft.ID = "app.components"

// Components is what the command line needs from the dependency graph.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*Components]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			sysmem.NodeID,
			metrics.NodeID,
			metrics.RegistryNodeID,
			watcher.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			probe, err := graft.Dep[ports.MemoryProbe](ctx)
			if err != nil {
				return nil, err
			}
			recorder, err := graft.Dep[*metrics.PrometheusRecorder](ctx)
			if err != nil {
				return nil, err
			}
			registry, err := graft.Dep[*prom.Registry](ctx)
			if err != nil {
				return nil, err
			}
			newWatcher, err := graft.Dep[watcher.Factory](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{
				App:    New(loader, log, probe, recorder, registry, newWatcher),
				Logger: log,
			}, nil
		},
	})
}
