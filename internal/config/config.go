package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for stockviz.
type Config struct {
	Storage Storage `yaml:"storage"`
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
	Charts  Charts  `yaml:"charts"`
	Catalog Catalog `yaml:"catalog"`
}

// Storage says where the catalog lives and which backend reads it.
type Storage struct {
	// Source is one of "json", "parquet" or "sqlite".
	Source       string `yaml:"source"`
	DataDir      string `yaml:"data_dir"`
	SQLitePath   string `yaml:"sqlite_path"`
	CatalogFile  string `yaml:"catalog_file"`
	ManifestFile string `yaml:"manifest_file"`
}

// Server holds network listener configuration.
type Server struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	GRPCPort int    `yaml:"grpc_port"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// File, when set, receives a copy of every log line.
	File string `yaml:"file"`
}

// Charts tunes chart construction.
type Charts struct {
	PieStartYear int `yaml:"pie_start_year"`
	PieEndYear   int `yaml:"pie_end_year"`
}

// Catalog controls how the catalog is laid out and loaded.
type Catalog struct {
	Market      string `yaml:"market"`
	LoadWorkers int    `yaml:"load_workers"`
}

// Source names.
const (
	SourceJSON    = "json"
	SourceParquet = "parquet"
	SourceSQLite  = "sqlite"
)

// Default returns a configuration that serves the bundled JSON data set on
// localhost.
func Default() *Config {
	return &Config{
		Storage: Storage{
			Source:       SourceJSON,
			DataDir:      "data",
			SQLitePath:   "data/stockviz.db",
			CatalogFile:  "data/stock_data.json",
			ManifestFile: "data/manifest.json",
		},
		Server:  Server{Host: "127.0.0.1", Port: 8080, GRPCPort: 9090},
		Logging: Logging{Level: "info", Format: "text"},
		Charts:  Charts{PieStartYear: 2015, PieEndYear: 2025},
		Catalog: Catalog{Market: "us", LoadWorkers: 8},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path on top of the
// defaults, then applies environment variable overrides and validates the
// result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default (with
// environment overrides) when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	cfg = Default()
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}

	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("CATALOG_SOURCE"); v != "" {
		cfg.Storage.Source = v
	}

	if v := os.Getenv("CATALOG_FILE"); v != "" {
		cfg.Storage.CatalogFile = v
	}

	if v := os.Getenv("MANIFEST_FILE"); v != "" {
		cfg.Storage.ManifestFile = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	for _, o := range []struct {
		env string
		dst *int
	}{
		{"PIE_START_YEAR", &cfg.Charts.PieStartYear},
		{"PIE_END_YEAR", &cfg.Charts.PieEndYear},
	} {
		v := os.Getenv(o.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", o.env, err)
		}
		*o.dst = n
	}
	return nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch c.Storage.Source {
	case SourceJSON:
		if c.Storage.CatalogFile == "" {
			return errors.New("storage.catalog_file is required for the json source")
		}
	case SourceParquet:
		if c.Storage.DataDir == "" {
			return errors.New("storage.data_dir is required for the parquet source")
		}
	case SourceSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("storage.sqlite_path is required for the sqlite source")
		}
	default:
		return fmt.Errorf("storage.source %q: want json, parquet or sqlite", c.Storage.Source)
	}
	if c.Charts.PieStartYear > c.Charts.PieEndYear {
		return fmt.Errorf("charts: pie_start_year %d is after pie_end_year %d", c.Charts.PieStartYear, c.Charts.PieEndYear)
	}
	if c.Catalog.LoadWorkers < 1 {
		return fmt.Errorf("catalog.load_workers must be positive, got %d", c.Catalog.LoadWorkers)
	}
	return nil
}

// HTTPAddr is the host:port of the HTTP listener.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GRPCAddr is the host:port of the gRPC listener.
func (c *Config) GRPCAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}
