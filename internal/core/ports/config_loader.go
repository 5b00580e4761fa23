package ports

import "go.trai.ch/kiln/internal/core/domain"

// CatalogLoader reads the target catalog and run settings.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type CatalogLoader interface {
	// Load parses the catalog at path. A missing file falls back to the built-in catalog.
	Load(path string) (*domain.Catalog, domain.Settings, error)
}
