package ports

import "go.trai.ch/jig/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds the configuration for the project containing cwd.
	// Without a config file it returns defaults rooted at cwd.
	Load(cwd string) (*domain.Config, error)
}
