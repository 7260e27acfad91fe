package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"golang.org/x/sync/errgroup"

	"stockviz/internal/domain"
)

// Compile-time interface checks.
var _ CatalogReader = (*ParquetStore)(nil)
var _ CatalogWriter = (*ParquetStore)(nil)

// ParquetStore keeps one Parquet file per ticker and year bucket.
type ParquetStore struct {
	DataDir string
	Market  string
	// Workers bounds concurrent file reads in ReadCatalog.
	Workers int
}

// NewParquetStore creates a new ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir, market string, workers int) *ParquetStore {
	if market == "" {
		market = "us"
	}
	if workers < 1 {
		workers = 1
	}
	return &ParquetStore{DataDir: dataDir, Market: market, Workers: workers}
}

// ---------------------------------------------------------------------------
// Parquet record type (on-disk schema)
// ---------------------------------------------------------------------------

// DailyRecord is the Parquet schema for one trading day.
type DailyRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms, UTC midnight
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	MarketCap float64 `parquet:"market_cap"`
}

func toParquet(symbol string, r domain.DailyRecord) DailyRecord {
	return DailyRecord{
		Symbol:    symbol,
		Timestamp: r.Date.Time().UnixMilli(),
		Open:      r.Open,
		High:      r.High,
		Low:       r.Low,
		Close:     r.Close,
		MarketCap: r.MarketCap,
	}
}

func fromParquet(r DailyRecord) domain.DailyRecord {
	return domain.DailyRecord{
		Date:      domain.DateOf(time.UnixMilli(r.Timestamp).UTC()),
		Open:      r.Open,
		High:      r.High,
		Low:       r.Low,
		Close:     r.Close,
		MarketCap: r.MarketCap,
	}
}

// ---------------------------------------------------------------------------
// CatalogWriter implementation
// ---------------------------------------------------------------------------

// WriteCatalog writes every bucket of c to its own file, merging with any
// file already on disk:
//
//	<DataDir>/<market>/daily/<TICKER>/<YYYY>.parquet
func (s *ParquetStore) WriteCatalog(ctx context.Context, c *domain.Catalog) error {
	for _, ticker := range c.Tickers() {
		for _, year := range c.Years(ticker) {
			if err := ctx.Err(); err != nil {
				return err
			}
			recs, _ := c.Records(ticker, year)
			if err := s.WriteRecords(ticker, year, recs); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteRecords merges recs into the (ticker, year) file.
func (s *ParquetStore) WriteRecords(ticker string, year int, recs []domain.DailyRecord) error {
	ticker = domain.NormalizeTicker(ticker)
	rows := make([]DailyRecord, len(recs))
	for i, r := range recs {
		rows[i] = toParquet(ticker, r)
	}

	path := s.dailyPath(ticker, year)

	// Read existing records to merge. Only a missing file is skipped.
	var existing []DailyRecord
	if _, err := os.Stat(path); err == nil {
		if existing, err = readParquetFile[DailyRecord](path); err != nil {
			return fmt.Errorf("reading existing %s/%d: %w", ticker, year, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s/%d: %w", ticker, year, err)
	}
	merged := mergeDailyRecords(existing, rows)

	if err := writeParquetFile(path, merged); err != nil {
		return fmt.Errorf("writing %s/%d: %w", ticker, year, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// CatalogReader implementation
// ---------------------------------------------------------------------------

// ReadCatalog loads every ticker/year file. Files are read concurrently,
// at most Workers at a time.
func (s *ParquetStore) ReadCatalog(ctx context.Context) (*domain.Catalog, error) {
	symbols, err := s.ListSymbols(ctx)
	if err != nil {
		return nil, err
	}

	type job struct {
		symbol string
		year   int
	}
	var jobs []job
	for _, sym := range symbols {
		years, err := s.listYears(sym)
		if err != nil {
			return nil, err
		}
		for _, y := range years {
			jobs = append(jobs, job{sym, y})
		}
	}

	results := make([][]domain.DailyRecord, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Workers)

	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows, err := readParquetFile[DailyRecord](s.dailyPath(j.symbol, j.year))
			if err != nil {
				return fmt.Errorf("reading %s/%d: %w", j.symbol, j.year, err)
			}
			recs := make([]domain.DailyRecord, len(rows))
			for k, r := range rows {
				recs[k] = fromParquet(r)
			}
			results[i] = recs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := domain.NewCatalogBuilder()
	for i, j := range jobs {
		b.Add(j.symbol, j.year, results[i]...)
	}
	return b.Build(), nil
}

// ListSymbols lists all tickers that have data in the store's market.
func (s *ParquetStore) ListSymbols(_ context.Context) ([]string, error) {
	dir := filepath.Join(s.DataDir, s.Market, "daily")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			symbols = append(symbols, e.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// listYears returns the year files present for symbol, ascending.
func (s *ParquetStore) listYears(symbol string) ([]int, error) {
	entries, err := os.ReadDir(filepath.Join(s.DataDir, s.Market, "daily", symbol))
	if err != nil {
		return nil, err
	}
	var years []int
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".parquet") {
			continue
		}
		y, err := strconv.Atoi(strings.TrimSuffix(name, ".parquet"))
		if err != nil {
			continue
		}
		years = append(years, y)
	}
	sort.Ints(years)
	return years, nil
}

// ---------------------------------------------------------------------------
// Path helpers
// ---------------------------------------------------------------------------

// dailyPath returns the filesystem path for a ticker/year Parquet file.
// Layout: <dataDir>/<market>/daily/<TICKER>/<YYYY>.parquet
func (s *ParquetStore) dailyPath(symbol string, year int) string {
	return filepath.Join(s.DataDir, s.Market, "daily", strings.ToUpper(symbol), strconv.Itoa(year)+".parquet")
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeDailyRecords deduplicates records by (symbol, timestamp), preferring
// incoming records over existing ones. Within incoming, the last record for
// a day wins. The result is sorted by timestamp.
func mergeDailyRecords(existing, incoming []DailyRecord) []DailyRecord {
	type key struct {
		symbol string
		ts     int64
	}
	seen := make(map[key]DailyRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.Symbol, r.Timestamp}] = r
	}
	for _, r := range incoming {
		seen[key{r.Symbol, r.Timestamp}] = r
	}

	merged := make([]DailyRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}
