package ports

import "go.trai.ch/kiln/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds kiln.yaml walking up from cwd, applies .env and environment
	// overrides, and returns the resolved configuration.
	Load(cwd string) (*domain.Config, error)

	// DiscoverRoot walks up from cwd to find the directory containing kiln.yaml.
	DiscoverRoot(cwd string) (string, error)
}
