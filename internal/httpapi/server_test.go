package httpapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stockviz/internal/chart"
	"stockviz/internal/domain"
	"stockviz/internal/series"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	b := domain.NewCatalogBuilder()
	b.Add("ACME", 2021,
		domain.DailyRecord{Date: domain.NewDate(2021, 3, 1), Open: 49, High: 51, Low: 48, Close: 50, MarketCap: 5e9},
		domain.DailyRecord{Date: domain.NewDate(2021, 6, 1), Open: 55, High: 58, Low: 54, Close: 56, MarketCap: 5.5e9},
	)
	b.Add("ACME", 2022, domain.DailyRecord{Date: domain.NewDate(2022, 3, 1), Open: 74, High: 76, Low: 73, Close: 75, MarketCap: 7.5e9})
	b.Add("ZERO", 2021,
		domain.DailyRecord{Date: domain.NewDate(2021, 1, 4), Close: 0},
		domain.DailyRecord{Date: domain.NewDate(2021, 1, 5), Close: 1},
	)
	c := b.Build()

	builder := chart.NewBuilder(c, domain.Manifest{Stocks: []string{"ACME"}, Years: []int{2021, 2022}},
		chart.Options{PieYears: series.YearRange{From: 2021, To: 2022}})
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	ts := httptest.NewServer(NewServer(builder, log).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string, out any) int {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestHealthAndManifest(t *testing.T) {
	ts := newTestServer(t)

	if code := get(t, ts, "/health", nil); code != http.StatusOK {
		t.Errorf("/health status = %d", code)
	}

	var m ManifestResponse
	if code := get(t, ts, "/api/manifest", &m); code != http.StatusOK {
		t.Fatalf("/api/manifest status = %d", code)
	}
	if len(m.Stocks) != 1 || m.DefaultYear != 2021 || len(m.ChartKinds) != 4 {
		t.Errorf("manifest = %+v", m)
	}
	if m.PieYears.From != 2021 || m.PieYears.To != 2022 {
		t.Errorf("PieYears = %+v", m.PieYears)
	}
}

func TestFilters(t *testing.T) {
	ts := newTestServer(t)

	var f FiltersResponse
	get(t, ts, "/api/filters/treemap", &f)
	if len(f.Filters) != 1 || f.Filters[0] != "year" {
		t.Errorf("treemap filters = %v", f.Filters)
	}
	get(t, ts, "/api/filters/pie", &f)
	if f.Filters == nil || len(f.Filters) != 0 {
		t.Errorf("pie filters = %#v, want empty list", f.Filters)
	}

	var e ErrorResponse
	if code := get(t, ts, "/api/filters/donut", &e); code != http.StatusBadRequest || e.Code != "InvalidSelection" {
		t.Errorf("unknown kind = %d %+v", code, e)
	}
}

func TestChart(t *testing.T) {
	ts := newTestServer(t)

	var res struct {
		Kind        string `json:"kind"`
		Title       string `json:"title"`
		Candlestick struct {
			Dates []string  `json:"dates"`
			Close []float64 `json:"close"`
		} `json:"candlestick"`
	}
	if code := get(t, ts, "/api/chart/candlestick?ticker=acme&year=2021", &res); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if res.Title != "ACME Candlestick Chart (2021)" {
		t.Errorf("Title = %q", res.Title)
	}
	if len(res.Candlestick.Dates) != 2 || res.Candlestick.Dates[0] != "2021-03-01" {
		t.Errorf("dates = %v", res.Candlestick.Dates)
	}

	var pie struct {
		Title string `json:"title"`
	}
	get(t, ts, "/api/chart/pie", &pie)
	if pie.Title != "Stock Performance (2021-2022)" {
		t.Errorf("pie Title = %q", pie.Title)
	}
}

func TestChartErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/api/chart/regression?year=2021", http.StatusBadRequest, "MissingSelection"},
		{"/api/chart/regression?ticker=ACME&year=abc", http.StatusBadRequest, "InvalidSelection"},
		{"/api/chart/regression?ticker=ACME&year=2019", http.StatusNotFound, "NoDataForSelection"},
		{"/api/chart/regression?ticker=ACME&year=2022", http.StatusUnprocessableEntity, "DegenerateFit"},
		{"/api/chart/treemap?year=1999", http.StatusUnprocessableEntity, "EmptyTreemap"},
	}
	for _, tt := range tests {
		var e ErrorResponse
		code := get(t, ts, tt.path, &e)
		if code != tt.status || e.Code != tt.code {
			t.Errorf("%s = %d %q, want %d %q", tt.path, code, e.Code, tt.status, tt.code)
		}
		if e.Error == "" {
			t.Errorf("%s: empty error message", tt.path)
		}
	}
}

func TestCalculate(t *testing.T) {
	ts := newTestServer(t)

	var res CalculateResponse
	code := get(t, ts, "/api/calculate?ticker=ACME&start=2021-03-01&end=2022-03-01&amount=1000", &res)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if res.Result.Shares != 20 || res.Result.FinalValue != 1500 {
		t.Errorf("result = %+v", res.Result)
	}
	if !strings.Contains(res.Display.Sentence, "$1,500.00") {
		t.Errorf("sentence = %q", res.Display.Sentence)
	}

	errs := []struct {
		query  string
		status int
		code   string
	}{
		{"ticker=ACME&start=2021-03-01&end=2022-03-01&amount=-1", http.StatusBadRequest, "InvalidAmount"},
		{"ticker=ACME&start=2021-03-01&end=2022-03-01&amount=lots", http.StatusBadRequest, "InvalidAmount"},
		{"ticker=NOPE&start=2021-03-01&end=2022-03-01&amount=10", http.StatusNotFound, "UnknownTicker"},
		{"ticker=ACME&start=2021-03-02&end=2022-03-01&amount=10", http.StatusNotFound, "MissingDateRecord"},
		{"ticker=ACME&start=yesterday&end=2022-03-01&amount=10", http.StatusBadRequest, "InvalidSelection"},
		{"ticker=ZERO&start=2021-01-04&end=2021-01-05&amount=10", http.StatusUnprocessableEntity, "DivisionByZero"},
	}
	for _, tt := range errs {
		var e ErrorResponse
		if code := get(t, ts, "/api/calculate?"+tt.query, &e); code != tt.status || e.Code != tt.code {
			t.Errorf("%s = %d %q, want %d %q", tt.query, code, e.Code, tt.status, tt.code)
		}
	}
}

func TestDatesAndTile(t *testing.T) {
	ts := newTestServer(t)

	var d DatesResponse
	get(t, ts, "/api/dates/acme", &d)
	if d.Ticker != "ACME" || len(d.Dates) != 3 {
		t.Errorf("dates = %+v", d)
	}

	var tile TileResponse
	if code := get(t, ts, "/api/treemap/2021/ACME", &tile); code != http.StatusOK {
		t.Fatalf("tile status = %d", code)
	}
	if tile.Display.Heading != "ACME Summary for 2021" || tile.Display.PercentChange != "12.00%" {
		t.Errorf("tile display = %+v", tile.Display)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/manifest", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
