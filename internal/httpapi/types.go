// Package httpapi serves charts, calculator results and selection metadata
// as JSON over HTTP.
package httpapi

import (
	"stockviz/internal/calculator"
	"stockviz/internal/selection"
	"stockviz/internal/series"
	"stockviz/internal/summary"
)

// ManifestResponse lists the selection choices.
type ManifestResponse struct {
	Stocks     []string              `json:"stocks"`
	Years      []int                 `json:"years"`
	ChartKinds []selection.ChartKind `json:"chartKinds"`
	PieYears   series.YearRange      `json:"pieYears"`
	// DefaultYear is preselected when switching to the treemap.
	DefaultYear int `json:"defaultYear,omitempty"`
}

// FiltersResponse names the controls shown for a chart kind.
type FiltersResponse struct {
	Kind    selection.ChartKind `json:"kind"`
	Filters []selection.Filter  `json:"filters"`
}

// DatesResponse lists the calculator dates of a ticker.
type DatesResponse struct {
	Ticker string   `json:"ticker"`
	Dates  []string `json:"dates"`
}

// CalculateResponse carries the raw calculation and its display strings.
type CalculateResponse struct {
	Result  *calculator.Result `json:"result"`
	Display summary.Return     `json:"display"`
}

// TileResponse is the summary shown for a clicked treemap tile.
type TileResponse struct {
	Tile    series.TreemapTile `json:"tile"`
	Display summary.Tile       `json:"display"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
