package stockviz

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stockviz/internal/chart"
	"stockviz/internal/domain"
	"stockviz/internal/httpapi"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	b := domain.NewCatalogBuilder()
	b.Add("ACME", 2021,
		domain.DailyRecord{Date: domain.NewDate(2021, 3, 1), Open: 49, High: 51, Low: 48, Close: 50, MarketCap: 5e9},
		domain.DailyRecord{Date: domain.NewDate(2021, 6, 1), Open: 55, High: 58, Low: 54, Close: 60, MarketCap: 6e9},
	)
	b.Add("ACME", 2022, domain.DailyRecord{Date: domain.NewDate(2022, 3, 1), Close: 75, MarketCap: 7.5e9})
	c := b.Build()
	builder := chart.NewBuilder(c, domain.ManifestFromCatalog(c), chart.DefaultOptions())

	ts := httptest.NewServer(httpapi.NewServer(builder, slog.New(slog.NewTextHandler(io.Discard, nil))).Handler())
	t.Cleanup(ts.Close)
	return NewClient(ts.URL + "/")
}

func TestNewClient(t *testing.T) {
	c := NewClient("http://localhost:8080/")
	if c.baseURL != "http://localhost:8080" {
		t.Errorf("baseURL = %q, want trailing slash trimmed", c.baseURL)
	}
	if c.httpClient == nil {
		t.Fatal("expected non-nil httpClient")
	}
}

func TestHealthAndManifest(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if err := c.Health(ctx); err != nil {
		t.Fatalf("Health: %v", err)
	}
	m, err := c.Manifest(ctx)
	if err != nil {
		t.Fatalf("Manifest: %v", err)
	}
	if len(m.Stocks) != 1 || m.Stocks[0] != "ACME" {
		t.Errorf("Stocks = %v", m.Stocks)
	}
	if m.DefaultYear != 2021 || m.PieYears.From != 2015 {
		t.Errorf("manifest = %+v", m)
	}
}

func TestChart(t *testing.T) {
	c := newTestClient(t)

	raw, err := c.Chart(context.Background(), "regression", "acme", 2021)
	if err != nil {
		t.Fatalf("Chart: %v", err)
	}
	var res struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		t.Fatal(err)
	}
	if res.Title != "ACME Regression Graph (2021)" {
		t.Errorf("Title = %q", res.Title)
	}
}

func TestDatesAndCalculate(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	dates, err := c.Dates(ctx, "ACME")
	if err != nil {
		t.Fatalf("Dates: %v", err)
	}
	if len(dates) != 3 || dates[0] != "2021-03-01" {
		t.Errorf("Dates = %v", dates)
	}

	r, err := c.Calculate(ctx, "ACME", dates[0], dates[2], 1000)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if r.Result.FinalValue != 1500 {
		t.Errorf("FinalValue = %v, want 1500", r.Result.FinalValue)
	}
	if !strings.Contains(r.Display.Sentence, "$1,500.00") {
		t.Errorf("Sentence = %q", r.Display.Sentence)
	}
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Chart(context.Background(), "candlestick", "ACME", 1999)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Code != "NoDataForSelection" {
		t.Errorf("APIError = %+v", apiErr)
	}
}
