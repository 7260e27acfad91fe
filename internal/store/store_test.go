package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stockviz/internal/config"
	"stockviz/internal/domain"
)

const sampleCatalog = `{
  "AAPL": {
    "2024": [
      {"Date": "2024-01-03", "Open": 185.5, "High": 187.0, "Low": 185.0, "Close": 186.0, "Market Cap": 2.9e12},
      {"Date": "2024-01-02", "Open": 185.0, "High": 186.5, "Low": 184.0, "Close": 185.5, "Market Cap": 2.8e12}
    ]
  },
  "MSFT": {
    "2023": [
      {"Date": "2023-12-29", "Open": 375.0, "High": 377.0, "Low": 373.0, "Close": 376.0, "Market Cap": 2.8e12}
    ],
    "2024": [
      {"Date": "2024-1-2", "Open": 373.0, "High": 376.0, "Low": 366.5, "Close": 370.9, "Market Cap": 2.75e12}
    ]
  }
}`

func sampleCatalogValue(t *testing.T) *domain.Catalog {
	t.Helper()
	c, err := DecodeCatalog([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("DecodeCatalog: %v", err)
	}
	return c
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

func TestDecodeCatalogKeepsSourceOrder(t *testing.T) {
	c := sampleCatalogValue(t)
	recs, ok := c.Records("AAPL", 2024)
	if !ok || len(recs) != 2 {
		t.Fatalf("AAPL/2024 = %v, %v", recs, ok)
	}
	if recs[0].Date.String() != "2024-01-03" {
		t.Errorf("first record date = %s, want file order 2024-01-03", recs[0].Date)
	}
	if recs[0].MarketCap != 2.9e12 {
		t.Errorf("MarketCap = %v, want 2.9e12", recs[0].MarketCap)
	}

	msft, _ := c.Records("MSFT", 2024)
	if msft[0].Date != domain.NewDate(2024, 1, 2) {
		t.Errorf("unpadded date parsed as %s", msft[0].Date)
	}
}

func TestDecodeCatalogScriptForm(t *testing.T) {
	c, err := DecodeCatalog([]byte("const stockData = " + sampleCatalog + ";\n"))
	if err != nil {
		t.Fatalf("DecodeCatalog: %v", err)
	}
	if c.Len() != 4 {
		t.Errorf("Len = %d, want 4", c.Len())
	}
}

func TestDecodeCatalogErrors(t *testing.T) {
	for name, body := range map[string]string{
		"bad year": `{"A": {"twenty": []}}`,
		"bad date": `{"A": {"2020": [{"Date": "someday"}]}}`,
		"not json": `{"A": `,
	} {
		if _, err := DecodeCatalog([]byte(body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestDecodeManifestMixedYears(t *testing.T) {
	m, err := DecodeManifest([]byte(`{"stocks": ["aapl", "MSFT"], "years": ["2021", 2019, 2020]}`))
	if err != nil {
		t.Fatalf("DecodeManifest: %v", err)
	}
	if len(m.Years) != 3 || m.Years[0] != 2019 || m.Years[2] != 2021 {
		t.Errorf("Years = %v, want [2019 2020 2021]", m.Years)
	}
	if m.Stocks[0] != "AAPL" {
		t.Errorf("Stocks = %v, want normalized tickers", m.Stocks)
	}
}

func TestEncodeCatalogRoundTrip(t *testing.T) {
	c := sampleCatalogValue(t)
	data, err := EncodeCatalog(c)
	if err != nil {
		t.Fatalf("EncodeCatalog: %v", err)
	}
	back, err := DecodeCatalog(data)
	if err != nil {
		t.Fatalf("DecodeCatalog: %v", err)
	}
	if back.Len() != c.Len() {
		t.Errorf("Len = %d, want %d", back.Len(), c.Len())
	}
}

func TestLoadJSONSource(t *testing.T) {
	dir := t.TempDir()
	catalogPath := writeFile(t, dir, "stock_data.json", sampleCatalog)
	manifestPath := writeFile(t, dir, "manifest.json", `{"stocks": ["MSFT"], "years": [2024]}`)
	ctx := context.Background()

	c, m, err := Load(ctx, NewJSONSource(catalogPath, manifestPath))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Stocks) != 1 || m.Stocks[0] != "MSFT" {
		t.Errorf("manifest = %+v, want the file manifest", m)
	}
	if !c.HasTicker("AAPL") {
		t.Error("catalog should still hold AAPL")
	}

	_, m, err = Load(ctx, NewJSONSource(catalogPath, ""))
	if err != nil {
		t.Fatalf("Load without manifest: %v", err)
	}
	if len(m.Stocks) != 2 || len(m.Years) != 2 {
		t.Errorf("derived manifest = %+v, want 2 stocks and 2 years", m)
	}

	_, _, err = Load(ctx, NewJSONSource(catalogPath, filepath.Join(dir, "absent.json")))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing manifest error = %v, want not-exist", err)
	}
}

// ---------------------------------------------------------------------------
// Parquet
// ---------------------------------------------------------------------------

func TestParquetStorePath(t *testing.T) {
	ps := NewParquetStore("/data", "us", 1)

	p := ps.dailyPath("aapl", 2024)
	want := filepath.Join("/data", "us", "daily", "AAPL", "2024.parquet")
	if p != want {
		t.Errorf("dailyPath mismatch:\n  got  %s\n  want %s", p, want)
	}
}

func TestParquetStoreWriteReadCatalog(t *testing.T) {
	dir := t.TempDir()
	ps := NewParquetStore(dir, "us", 4)
	ctx := context.Background()

	if err := ps.WriteCatalog(ctx, sampleCatalogValue(t)); err != nil {
		t.Fatalf("WriteCatalog: %v", err)
	}

	got, err := ps.ReadCatalog(ctx)
	if err != nil {
		t.Fatalf("ReadCatalog: %v", err)
	}
	if got.Len() != 4 {
		t.Fatalf("Len = %d, want 4", got.Len())
	}

	recs, ok := got.Records("AAPL", 2024)
	if !ok || len(recs) != 2 {
		t.Fatalf("AAPL/2024 = %v, %v", recs, ok)
	}
	if recs[0].Date != domain.NewDate(2024, 1, 2) || recs[0].Close != 185.5 {
		t.Errorf("first record = %+v, want 2024-01-02 close 185.5", recs[0])
	}
	if recs[1].MarketCap != 2.9e12 {
		t.Errorf("MarketCap = %v, want 2.9e12", recs[1].MarketCap)
	}

	symbols, err := ps.ListSymbols(ctx)
	if err != nil {
		t.Fatalf("ListSymbols: %v", err)
	}
	if strings.Join(symbols, ",") != "AAPL,MSFT" {
		t.Errorf("ListSymbols = %v, want [AAPL MSFT]", symbols)
	}
}

func TestParquetStoreMerge(t *testing.T) {
	dir := t.TempDir()
	ps := NewParquetStore(dir, "us", 1)
	ctx := context.Background()

	first := domain.DailyRecord{Date: domain.NewDate(2024, 3, 1), Close: 403}
	if err := ps.WriteRecords("MSFT", 2024, []domain.DailyRecord{first}); err != nil {
		t.Fatalf("WriteRecords (first): %v", err)
	}

	// Same day again plus a new day: the day is replaced, the other added.
	if err := ps.WriteRecords("MSFT", 2024, []domain.DailyRecord{
		{Date: domain.NewDate(2024, 3, 1), Close: 404},
		{Date: domain.NewDate(2024, 3, 4), Close: 408},
	}); err != nil {
		t.Fatalf("WriteRecords (second): %v", err)
	}

	c, err := ps.ReadCatalog(ctx)
	if err != nil {
		t.Fatalf("ReadCatalog: %v", err)
	}
	recs, _ := c.Records("MSFT", 2024)
	if len(recs) != 2 {
		t.Fatalf("got %d records after merge, want 2", len(recs))
	}
	if recs[0].Close != 404 {
		t.Errorf("merged close = %v, want the newer 404", recs[0].Close)
	}
}

func TestParquetStoreRefusesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	ps := NewParquetStore(dir, "us", 1)
	path := ps.dailyPath("MSFT", 2024)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not a parquet file"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := ps.WriteRecords("MSFT", 2024, []domain.DailyRecord{{Date: domain.NewDate(2024, 3, 1), Close: 403}})
	if err == nil {
		t.Fatal("expected an error merging into a corrupt file")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "not a parquet file" {
		t.Error("corrupt file was overwritten")
	}
}

func TestParquetStoreEmptyDir(t *testing.T) {
	c, err := NewParquetStore(t.TempDir(), "us", 2).ReadCatalog(context.Background())
	if err != nil {
		t.Fatalf("ReadCatalog: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}

// ---------------------------------------------------------------------------
// SQLite
// ---------------------------------------------------------------------------

func TestSQLiteStoreWriteReadCatalog(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore(%q) returned error: %v", dbPath, err)
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			t.Errorf("Close() returned error: %v", cerr)
		}
	}()

	if err := s.WriteCatalog(ctx, sampleCatalogValue(t)); err != nil {
		t.Fatalf("WriteCatalog: %v", err)
	}
	// Writing twice must not duplicate rows.
	if err := s.WriteCatalog(ctx, sampleCatalogValue(t)); err != nil {
		t.Fatalf("WriteCatalog (again): %v", err)
	}

	c, err := s.ReadCatalog(ctx)
	if err != nil {
		t.Fatalf("ReadCatalog: %v", err)
	}
	if c.Len() != 4 {
		t.Errorf("Len = %d, want 4", c.Len())
	}
	msft, ok := c.Records("MSFT", 2023)
	if !ok || msft[0].Close != 376 {
		t.Errorf("MSFT/2023 = %+v, %v", msft, ok)
	}

	symbols, err := s.ListSymbols(ctx)
	if err != nil {
		t.Fatalf("ListSymbols: %v", err)
	}
	if strings.Join(symbols, ",") != "AAPL,MSFT" {
		t.Errorf("ListSymbols = %v", symbols)
	}
}

// ---------------------------------------------------------------------------
// Open
// ---------------------------------------------------------------------------

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.CatalogFile = writeFile(t, dir, "stock_data.json", sampleCatalog)
	cfg.Storage.ManifestFile = ""
	cfg.Storage.DataDir = dir
	cfg.Storage.SQLitePath = filepath.Join(dir, "open.db")

	for _, source := range []string{config.SourceJSON, config.SourceParquet, config.SourceSQLite} {
		cfg.Storage.Source = source
		src, closer, err := Open(cfg)
		if err != nil {
			t.Fatalf("Open(%s): %v", source, err)
		}
		if _, err := src.ReadCatalog(context.Background()); err != nil {
			t.Errorf("%s ReadCatalog: %v", source, err)
		}
		if err := closer.Close(); err != nil {
			t.Errorf("%s Close: %v", source, err)
		}
	}

	cfg.Storage.Source = "csv"
	if _, _, err := Open(cfg); err == nil {
		t.Error("Open(csv) should fail")
	}
	if _, _, err := OpenWriter(cfg, config.SourceJSON); err == nil {
		t.Error("OpenWriter(json) should fail")
	}
}
