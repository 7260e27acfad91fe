package series

import (
	"fmt"

	"stockviz/internal/domain"
)

// YearRange is an inclusive range of catalog years.
type YearRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// DefaultPieYears is the range the performance pie covers unless configured.
var DefaultPieYears = YearRange{From: 2015, To: 2025}

// Contains reports whether year lies within the range.
func (r YearRange) Contains(year int) bool { return year >= r.From && year <= r.To }

func (r YearRange) String() string { return fmt.Sprintf("%d-%d", r.From, r.To) }

// PieSlice is the summed close of one ticker.
type PieSlice struct {
	Ticker     string  `json:"ticker"`
	TotalClose float64 `json:"totalClose"`
}

// PieSeries holds one slice per requested ticker, in request order.
// Tickers without any record in range still get a zero slice; NoData lists
// them so callers can surface the gap.
type PieSeries struct {
	Range  YearRange  `json:"range"`
	Slices []PieSlice `json:"slices"`
	NoData []string   `json:"noData,omitempty"`
}

// Totals returns ticker → total close.
func (p *PieSeries) Totals() map[string]float64 {
	m := make(map[string]float64, len(p.Slices))
	for _, s := range p.Slices {
		m[s.Ticker] = s.TotalClose
	}
	return m
}

// BuildPie sums Close over every record of every year in yr for each ticker.
func BuildPie(c *domain.Catalog, tickers []string, yr YearRange) (*PieSeries, error) {
	if yr.From > yr.To {
		return nil, fmt.Errorf("%w: pie range %s is inverted", domain.ErrInvalidSelection, yr)
	}

	p := &PieSeries{Range: yr, Slices: make([]PieSlice, 0, len(tickers))}
	for _, ticker := range uniqueTickers(tickers) {
		total, found := 0.0, false
		for year := yr.From; year <= yr.To; year++ {
			recs, ok := c.Records(ticker, year)
			if !ok {
				continue
			}
			for _, r := range recs {
				total += r.Close
				found = true
			}
		}
		// Zero-fill: a ticker with no data is reported, not omitted.
		if !found {
			p.NoData = append(p.NoData, ticker)
		}
		p.Slices = append(p.Slices, PieSlice{Ticker: ticker, TotalClose: total})
	}
	return p, nil
}
