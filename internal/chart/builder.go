// Package chart is the single entry point the presentation adapters call:
// it validates a selection, picks the series builder for its chart kind and
// returns a tagged, titled result.
package chart

import (
	"errors"
	"fmt"

	"stockviz/internal/calculator"
	"stockviz/internal/domain"
	"stockviz/internal/selection"
	"stockviz/internal/series"
)

// Options tunes the builder.
type Options struct {
	PieYears series.YearRange
}

// DefaultOptions returns the stock pie range.
func DefaultOptions() Options {
	return Options{PieYears: series.DefaultPieYears}
}

// Builder binds the shared catalog and manifest. It holds no mutable state
// and may be used from many goroutines.
type Builder struct {
	catalog  *domain.Catalog
	manifest domain.Manifest
	opts     Options
}

// NewBuilder creates a Builder. A zero PieYears falls back to the default.
func NewBuilder(c *domain.Catalog, m domain.Manifest, opts Options) *Builder {
	if opts.PieYears == (series.YearRange{}) {
		opts.PieYears = series.DefaultPieYears
	}
	return &Builder{catalog: c, manifest: m, opts: opts}
}

// Manifest returns the selection choices.
func (b *Builder) Manifest() domain.Manifest { return b.manifest }

// Catalog returns the shared catalog.
func (b *Builder) Catalog() *domain.Catalog { return b.catalog }

// PieYears returns the configured pie range.
func (b *Builder) PieYears() series.YearRange { return b.opts.PieYears }

// Result is a built chart. Exactly one of the series pointers is set,
// matching Kind.
type Result struct {
	Kind        selection.ChartKind       `json:"kind"`
	Title       string                    `json:"title"`
	Regression  *series.RegressionSeries  `json:"regression,omitempty"`
	Candlestick *series.CandlestickSeries `json:"candlestick,omitempty"`
	Pie         *series.PieSeries         `json:"pie,omitempty"`
	Treemap     *series.TreemapSeries     `json:"treemap,omitempty"`
}

// Build produces the chart for sel. Every error carries a taxonomy tag.
func (b *Builder) Build(sel selection.Selection) (*Result, error) {
	if err := selection.Validate(sel); err != nil {
		return nil, err
	}

	switch sel.Kind {
	case selection.ChartRegression:
		recs, err := selection.Resolve(b.catalog, sel)
		if err != nil {
			return nil, err
		}
		s, err := series.BuildRegression(recs)
		if err != nil {
			return nil, fmt.Errorf("regression for %s %d: %w", sel.Ticker, sel.Year, err)
		}
		return &Result{
			Kind:       sel.Kind,
			Title:      fmt.Sprintf("%s Regression Graph (%d)", sel.Ticker, sel.Year),
			Regression: s,
		}, nil

	case selection.ChartCandlestick:
		recs, err := selection.Resolve(b.catalog, sel)
		if err != nil {
			return nil, err
		}
		s, err := series.BuildCandlestick(recs)
		if err != nil {
			return nil, fmt.Errorf("candlestick for %s %d: %w", sel.Ticker, sel.Year, err)
		}
		return &Result{
			Kind:        sel.Kind,
			Title:       fmt.Sprintf("%s Candlestick Chart (%d)", sel.Ticker, sel.Year),
			Candlestick: s,
		}, nil

	case selection.ChartPie:
		s, err := series.BuildPie(b.catalog, b.manifest.Stocks, b.opts.PieYears)
		if err != nil {
			return nil, err
		}
		return &Result{
			Kind:  sel.Kind,
			Title: fmt.Sprintf("Stock Performance (%d-%d)", s.Range.From, s.Range.To),
			Pie:   s,
		}, nil

	case selection.ChartTreemap:
		s, err := series.BuildTreemap(b.catalog, b.manifest.Stocks, sel.Year)
		if err != nil {
			return nil, err
		}
		return &Result{
			Kind:    sel.Kind,
			Title:   fmt.Sprintf("Treemap for %d", sel.Year),
			Treemap: s,
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown chart kind %q", domain.ErrInvalidSelection, sel.Kind)
}

// Calculate validates the calculator form and runs the return calculation.
func (b *Builder) Calculate(in selection.CalculatorInput) (*calculator.Result, error) {
	if err := selection.ValidateCalculator(in); err != nil {
		return nil, err
	}
	return calculator.ComputeReturn(b.catalog, in.Ticker, in.StartDate, in.EndDate, in.Amount)
}

// Dates lists the calculator date choices for ticker.
func (b *Builder) Dates(ticker string) ([]domain.Date, error) {
	return calculator.AvailableDates(b.catalog, ticker)
}

// Tile returns the treemap tile of ticker in year, as shown when a tile is
// clicked.
func (b *Builder) Tile(year int, ticker string) (series.TreemapTile, error) {
	ticker = domain.NormalizeTicker(ticker)
	if !b.catalog.HasTicker(ticker) {
		return series.TreemapTile{}, fmt.Errorf("%w: %q", domain.ErrUnknownTicker, ticker)
	}
	tm, err := series.BuildTreemap(b.catalog, []string{ticker}, year)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyTreemap) {
			return series.TreemapTile{}, fmt.Errorf("%w: %s in %d", domain.ErrNoDataForSelection, ticker, year)
		}
		return series.TreemapTile{}, err
	}
	return tm.Tiles[0], nil
}
