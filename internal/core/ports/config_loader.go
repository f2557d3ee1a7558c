package ports

import "go.trai.ch/bake/internal/core/domain"

// ConfigLoader defines the interface for loading the suite definition.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers the suite file from cwd and returns the suite.
	Load(cwd string) (*domain.Suite, error)

	// DiscoverRoot walks up from cwd to find the suite root.
	// Returns the directory containing bake.yaml.
	DiscoverRoot(cwd string) (string, error)
}
