package store

import (
	"fmt"
	"io"

	"stockviz/internal/config"
)

// Open returns the catalog reader selected by cfg.Storage.Source. The
// returned closer releases any handle the source holds.
func Open(cfg *config.Config) (CatalogReader, io.Closer, error) {
	switch cfg.Storage.Source {
	case config.SourceJSON:
		return NewJSONSource(cfg.Storage.CatalogFile, cfg.Storage.ManifestFile), nopCloser{}, nil
	case config.SourceParquet:
		return NewParquetStore(cfg.Storage.DataDir, cfg.Catalog.Market, cfg.Catalog.LoadWorkers), nopCloser{}, nil
	case config.SourceSQLite:
		s, err := NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
	return nil, nil, fmt.Errorf("unknown catalog source %q", cfg.Storage.Source)
}

// OpenWriter returns a writer for the parquet or sqlite backend, used by
// the import command.
func OpenWriter(cfg *config.Config, target string) (CatalogWriter, io.Closer, error) {
	switch target {
	case config.SourceParquet:
		return NewParquetStore(cfg.Storage.DataDir, cfg.Catalog.Market, cfg.Catalog.LoadWorkers), nopCloser{}, nil
	case config.SourceSQLite:
		s, err := NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
	return nil, nil, fmt.Errorf("cannot import into %q: want parquet or sqlite", target)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
