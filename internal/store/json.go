package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"stockviz/internal/domain"
)

var _ CatalogReader = (*JSONSource)(nil)
var _ ManifestReader = (*JSONSource)(nil)

// JSONSource reads the static data set: a catalog file shaped
// {"TICKER": {"YYYY": [records...]}} and an optional manifest file
// {"stocks": [...], "years": [...]}. The catalog file may also be a script
// of the form `const stockData = {...};`.
type JSONSource struct {
	CatalogFile  string
	ManifestFile string
}

// NewJSONSource creates a source over the given files. manifestFile may be
// empty.
func NewJSONSource(catalogFile, manifestFile string) *JSONSource {
	return &JSONSource{CatalogFile: catalogFile, ManifestFile: manifestFile}
}

// jsonRecord is the on-disk record shape.
type jsonRecord struct {
	Date      string  `json:"Date"`
	Open      float64 `json:"Open"`
	High      float64 `json:"High"`
	Low       float64 `json:"Low"`
	Close     float64 `json:"Close"`
	MarketCap float64 `json:"Market Cap"`
}

// ReadCatalog parses the catalog file.
func (s *JSONSource) ReadCatalog(_ context.Context) (*domain.Catalog, error) {
	data, err := os.ReadFile(s.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return DecodeCatalog(data)
}

// ListSymbols returns the tickers of the catalog file.
func (s *JSONSource) ListSymbols(ctx context.Context) ([]string, error) {
	c, err := s.ReadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return c.Tickers(), nil
}

// ReadManifest parses the manifest file, or returns ErrNoManifest when none
// is configured.
func (s *JSONSource) ReadManifest(_ context.Context) (domain.Manifest, error) {
	if s.ManifestFile == "" {
		return domain.Manifest{}, ErrNoManifest
	}
	data, err := os.ReadFile(s.ManifestFile)
	if err != nil {
		return domain.Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}
	return DecodeManifest(data)
}

// DecodeCatalog parses catalog JSON. Records keep file order within each
// year bucket.
func DecodeCatalog(data []byte) (*domain.Catalog, error) {
	var raw map[string]map[string][]jsonRecord
	if err := json.Unmarshal(stripScript(data), &raw); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	b := domain.NewCatalogBuilder()
	for ticker, years := range raw {
		for yearKey, recs := range years {
			year, err := strconv.Atoi(strings.TrimSpace(yearKey))
			if err != nil {
				return nil, fmt.Errorf("decoding catalog: %s: year key %q: %w", ticker, yearKey, err)
			}
			out := make([]domain.DailyRecord, 0, len(recs))
			for i, r := range recs {
				d, err := domain.ParseDate(r.Date)
				if err != nil {
					return nil, fmt.Errorf("decoding catalog: %s/%d record %d: %w", ticker, year, i, err)
				}
				out = append(out, domain.DailyRecord{
					Date:      d,
					Open:      r.Open,
					High:      r.High,
					Low:       r.Low,
					Close:     r.Close,
					MarketCap: r.MarketCap,
				})
			}
			b.Add(ticker, year, out...)
		}
	}
	return b.Build(), nil
}

// EncodeCatalog renders c in the catalog file shape.
func EncodeCatalog(c *domain.Catalog) ([]byte, error) {
	raw := make(map[string]map[string][]jsonRecord)
	for _, ticker := range c.Tickers() {
		years := make(map[string][]jsonRecord)
		for _, y := range c.Years(ticker) {
			recs, _ := c.Records(ticker, y)
			out := make([]jsonRecord, len(recs))
			for i, r := range recs {
				out[i] = jsonRecord{
					Date:      r.Date.String(),
					Open:      r.Open,
					High:      r.High,
					Low:       r.Low,
					Close:     r.Close,
					MarketCap: r.MarketCap,
				}
			}
			years[strconv.Itoa(y)] = out
		}
		raw[ticker] = years
	}
	return json.MarshalIndent(raw, "", "  ")
}

// manifestYears accepts both numbers and numeric strings.
type manifestYears []int

func (m *manifestYears) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		var n int
		if err := json.Unmarshal(item, &n); err == nil {
			out = append(out, n)
			continue
		}
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			return fmt.Errorf("year %s: want number or string", item)
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("year %q: %w", s, err)
		}
		out = append(out, n)
	}
	*m = out
	return nil
}

// DecodeManifest parses manifest JSON. Tickers are normalized and years are
// sorted ascending.
func DecodeManifest(data []byte) (domain.Manifest, error) {
	var raw struct {
		Stocks []string      `json:"stocks"`
		Years  manifestYears `json:"years"`
	}
	if err := json.Unmarshal(stripScript(data), &raw); err != nil {
		return domain.Manifest{}, fmt.Errorf("decoding manifest: %w", err)
	}

	m := domain.Manifest{Stocks: make([]string, 0, len(raw.Stocks)), Years: []int(raw.Years)}
	for _, s := range raw.Stocks {
		m.Stocks = append(m.Stocks, domain.NormalizeTicker(s))
	}
	sort.Ints(m.Years)
	return m, nil
}

// stripScript reduces `const name = {...};` to the object literal. Plain
// JSON passes through untouched.
func stripScript(data []byte) []byte {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] == '{' || trimmed[0] == '[' {
		return trimmed
	}
	if i := bytes.IndexByte(trimmed, '='); i >= 0 {
		trimmed = bytes.TrimSpace(trimmed[i+1:])
	}
	return bytes.TrimSpace(bytes.TrimSuffix(trimmed, []byte(";")))
}
