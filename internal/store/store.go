// Package store defines where the stock catalog comes from and how an
// imported catalog is persisted: the static JSON data set, per-ticker
// Parquet files and a SQLite database.
package store

import (
	"context"
	"errors"

	"stockviz/internal/domain"
)

// ErrNoManifest is returned by ReadManifest when the source carries no
// manifest of its own.
var ErrNoManifest = errors.New("source has no manifest")

// CatalogReader loads the full catalog.
type CatalogReader interface {
	// ReadCatalog returns every ticker/year bucket held by the source.
	ReadCatalog(ctx context.Context) (*domain.Catalog, error)

	// ListSymbols returns all distinct tickers available, sorted.
	ListSymbols(ctx context.Context) ([]string, error)
}

// CatalogWriter persists a catalog. Existing records for the same ticker
// and date are replaced.
type CatalogWriter interface {
	WriteCatalog(ctx context.Context, c *domain.Catalog) error
}

// ManifestReader is implemented by sources that ship their own manifest.
type ManifestReader interface {
	ReadManifest(ctx context.Context) (domain.Manifest, error)
}

// Load reads the catalog from src together with its manifest. Sources
// without a manifest get one derived from the catalog.
func Load(ctx context.Context, src CatalogReader) (*domain.Catalog, domain.Manifest, error) {
	c, err := src.ReadCatalog(ctx)
	if err != nil {
		return nil, domain.Manifest{}, err
	}

	if mr, ok := src.(ManifestReader); ok {
		m, err := mr.ReadManifest(ctx)
		switch {
		case err == nil:
			return c, m, nil
		case !errors.Is(err, ErrNoManifest):
			return nil, domain.Manifest{}, err
		}
	}
	return c, domain.ManifestFromCatalog(c), nil
}
