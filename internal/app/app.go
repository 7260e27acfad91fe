// Package app wires configuration, storage and the chart builder together
// for the stockviz binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"stockviz/internal/chart"
	"stockviz/internal/config"
	"stockviz/internal/series"
	"stockviz/internal/store"
	"stockviz/internal/util"
)

// DefaultConfigPath is used when STOCKVIZ_CONFIG is unset.
const DefaultConfigPath = "config/stockviz.yaml"

// ConfigPath returns the config file named by STOCKVIZ_CONFIG, or the
// default path.
func ConfigPath() string {
	if p := os.Getenv("STOCKVIZ_CONFIG"); p != "" {
		return p
	}
	return DefaultConfigPath
}

// Options turns the chart section of cfg into builder options.
func Options(cfg *config.Config) chart.Options {
	return chart.Options{PieYears: series.YearRange{From: cfg.Charts.PieStartYear, To: cfg.Charts.PieEndYear}}
}

// OpenCharts loads the catalog from the configured source and returns a
// builder over it. The catalog is fully read before returning; the builder
// holds no store handle.
func OpenCharts(ctx context.Context, cfg *config.Config, log *slog.Logger) (*chart.Builder, error) {
	src, closer, err := store.Open(cfg)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	start := time.Now()
	c, m, err := store.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("loading catalog from %s source: %w", cfg.Storage.Source, err)
	}
	log.Info("catalog loaded",
		"source", cfg.Storage.Source,
		"tickers", len(m.Stocks),
		"years", len(m.Years),
		"records", c.Len(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return chart.NewBuilder(c, m, Options(cfg)), nil
}

// Logger builds the process logger from cfg and installs it as the slog
// default. The returned func closes the log file, if any.
func Logger(cfg *config.Config) (*slog.Logger, func() error, error) {
	w, closeLog, err := util.LogOutput(cfg.Logging.File)
	if err != nil {
		return nil, nil, err
	}
	logger := util.NewLogger(w, cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)
	return logger, closeLog, nil
}
