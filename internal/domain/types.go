// Package domain defines the core data types shared across stockviz: daily
// price records, the immutable stock catalog, the ticker/year manifest, and
// the error taxonomy surfaced to every presentation adapter.
package domain

import (
	"slices"
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Records
// ---------------------------------------------------------------------------

// DailyRecord is one trading day for one ticker.
type DailyRecord struct {
	Date      Date    `json:"date"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	MarketCap float64 `json:"marketCap"`
}

// SortByDate stable-sorts records by date ascending in place. Records that
// share a date keep their relative order.
func SortByDate(records []DailyRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

// Catalog maps ticker → year → daily records. Records keep the order in
// which the source produced them; consumers needing chronological order
// must sort. A built Catalog is never mutated and is safe to share between
// goroutines.
type Catalog struct {
	byTicker map[string]map[int][]DailyRecord
}

// CatalogBuilder accumulates records before freezing them into a Catalog.
type CatalogBuilder struct {
	byTicker map[string]map[int][]DailyRecord
}

// NewCatalogBuilder returns an empty builder.
func NewCatalogBuilder() *CatalogBuilder {
	return &CatalogBuilder{byTicker: make(map[string]map[int][]DailyRecord)}
}

// Add appends records to the (ticker, year) bucket. Tickers are normalized
// to upper case.
func (b *CatalogBuilder) Add(ticker string, year int, records ...DailyRecord) {
	ticker = NormalizeTicker(ticker)
	years, ok := b.byTicker[ticker]
	if !ok {
		years = make(map[int][]DailyRecord)
		b.byTicker[ticker] = years
	}
	years[year] = append(years[year], records...)
}

// AddRecord files a record under its own calendar year.
func (b *CatalogBuilder) AddRecord(ticker string, r DailyRecord) {
	b.Add(ticker, r.Date.Year(), r)
}

// Build freezes the builder. The builder must not be used afterwards.
func (b *CatalogBuilder) Build() *Catalog {
	c := &Catalog{byTicker: b.byTicker}
	b.byTicker = nil
	return c
}

// NormalizeTicker trims and upper-cases a ticker symbol.
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// HasTicker reports whether the catalog holds any year bucket for ticker.
func (c *Catalog) HasTicker(ticker string) bool {
	_, ok := c.byTicker[NormalizeTicker(ticker)]
	return ok
}

// Tickers returns every ticker in the catalog, sorted.
func (c *Catalog) Tickers() []string {
	out := make([]string, 0, len(c.byTicker))
	for t := range c.byTicker {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Years returns the year buckets of ticker, sorted ascending.
func (c *Catalog) Years(ticker string) []int {
	years := c.byTicker[NormalizeTicker(ticker)]
	out := make([]int, 0, len(years))
	for y := range years {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// Records returns a copy of the (ticker, year) bucket in source order. The
// boolean is false when the bucket does not exist.
func (c *Catalog) Records(ticker string, year int) ([]DailyRecord, bool) {
	years, ok := c.byTicker[NormalizeTicker(ticker)]
	if !ok {
		return nil, false
	}
	recs, ok := years[year]
	if !ok {
		return nil, false
	}
	return slices.Clone(recs), true
}

// AllRecords returns a copy of every record of ticker, concatenated in
// ascending year-bucket order.
func (c *Catalog) AllRecords(ticker string) []DailyRecord {
	years := c.byTicker[NormalizeTicker(ticker)]
	var out []DailyRecord
	for _, y := range c.Years(ticker) {
		out = append(out, years[y]...)
	}
	return out
}

// Len returns the total number of records in the catalog.
func (c *Catalog) Len() int {
	n := 0
	for _, years := range c.byTicker {
		for _, recs := range years {
			n += len(recs)
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Manifest
// ---------------------------------------------------------------------------

// Manifest lists the tickers and years offered as selection choices.
type Manifest struct {
	Stocks []string `json:"stocks"`
	Years  []int    `json:"years"`
}

// ManifestFromCatalog derives a manifest from the catalog contents.
func ManifestFromCatalog(c *Catalog) Manifest {
	seen := make(map[int]bool)
	var years []int
	for _, t := range c.Tickers() {
		for _, y := range c.Years(t) {
			if !seen[y] {
				seen[y] = true
				years = append(years, y)
			}
		}
	}
	sort.Ints(years)
	return Manifest{Stocks: c.Tickers(), Years: years}
}

// HasStock reports whether ticker is listed.
func (m Manifest) HasStock(ticker string) bool {
	return slices.Contains(m.Stocks, NormalizeTicker(ticker))
}

// HasYear reports whether year is listed.
func (m Manifest) HasYear(year int) bool {
	return slices.Contains(m.Years, year)
}
