package series

import (
	"fmt"
	"math"

	"stockviz/internal/domain"
)

// TreemapTile summarizes one ticker's year: area is market cap, color is
// percent change from the first to the last close.
type TreemapTile struct {
	Ticker            string  `json:"ticker"`
	MarketCapBillions float64 `json:"marketCapBillions"`
	FirstClose        float64 `json:"firstClose"`
	LastClose         float64 `json:"lastClose"`
	PercentChange     float64 `json:"percentChange"`
}

// TreemapSeries holds the tiles for one year and the color scale bounds.
type TreemapSeries struct {
	Year     int           `json:"year"`
	Tiles    []TreemapTile `json:"tiles"`
	ColorMin float64       `json:"colorMin"`
	ColorMax float64       `json:"colorMax"`
}

// Tile returns the tile for ticker, if present.
func (t *TreemapSeries) Tile(ticker string) (TreemapTile, bool) {
	ticker = domain.NormalizeTicker(ticker)
	for _, tile := range t.Tiles {
		if tile.Ticker == ticker {
			return tile, true
		}
	}
	return TreemapTile{}, false
}

// BuildTreemap computes one tile per ticker that has records in year.
// Tickers without records are skipped, unlike the pie which zero-fills.
func BuildTreemap(c *domain.Catalog, tickers []string, year int) (*TreemapSeries, error) {
	t := &TreemapSeries{Year: year}
	for _, ticker := range uniqueTickers(tickers) {
		recs, ok := c.Records(ticker, year)
		if !ok || len(recs) == 0 {
			continue
		}
		tile, err := buildTile(ticker, recs)
		if err != nil {
			return nil, err
		}
		t.Tiles = append(t.Tiles, tile)
	}

	if len(t.Tiles) == 0 {
		return nil, fmt.Errorf("%w: no ticker has records in %d", domain.ErrEmptyTreemap, year)
	}

	t.ColorMin, t.ColorMax = math.Inf(1), math.Inf(-1)
	for _, tile := range t.Tiles {
		t.ColorMin = math.Min(t.ColorMin, tile.PercentChange)
		t.ColorMax = math.Max(t.ColorMax, tile.PercentChange)
	}
	return t, nil
}

// buildTile sorts recs (a private copy) before taking first and last.
func buildTile(ticker string, recs []domain.DailyRecord) (TreemapTile, error) {
	domain.SortByDate(recs)
	first, last := recs[0], recs[len(recs)-1]
	if first.Close == 0 {
		return TreemapTile{}, fmt.Errorf("%w: %s first close on %s is zero", domain.ErrDivisionByZero, ticker, first.Date)
	}
	return TreemapTile{
		Ticker:            ticker,
		MarketCapBillions: first.MarketCap / 1e9,
		FirstClose:        first.Close,
		LastClose:         last.Close,
		PercentChange:     (last.Close - first.Close) / first.Close * 100,
	}, nil
}

// uniqueTickers normalizes tickers and drops repeats, keeping first
// occurrence order.
func uniqueTickers(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = domain.NormalizeTicker(t)
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
