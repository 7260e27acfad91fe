package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"stockviz/internal/chart"
	"stockviz/internal/domain"
	"stockviz/internal/selection"
	"stockviz/internal/summary"
)

// Server serves the chart API over a shared, read-only chart builder.
type Server struct {
	charts *chart.Builder
	log    *slog.Logger
}

// NewServer creates a new HTTP API server.
func NewServer(charts *chart.Builder, log *slog.Logger) *Server {
	return &Server{charts: charts, log: log}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/manifest", s.handleManifest)
	mux.HandleFunc("GET /api/filters/{kind}", s.handleFilters)
	mux.HandleFunc("GET /api/chart/{kind}", s.handleChart)
	mux.HandleFunc("GET /api/dates/{ticker}", s.handleDates)
	mux.HandleFunc("GET /api/calculate", s.handleCalculate)
	mux.HandleFunc("GET /api/treemap/{year}/{ticker}", s.handleTile)
}

// Handler returns the routes wrapped in request ID, panic recovery, request
// logging and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	var h http.Handler = mux
	h = s.logRequests(h)
	h = middleware.Recoverer(h)
	h = middleware.RequestID(h)
	h = cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	})(h)
	return h
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	m := s.charts.Manifest()
	writeJSON(w, ManifestResponse{
		Stocks:      m.Stocks,
		Years:       m.Years,
		ChartKinds:  selection.ChartKinds,
		PieYears:    s.charts.PieYears(),
		DefaultYear: selection.DefaultYear(m),
	})
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	kind, err := selection.ParseChartKind(r.PathValue("kind"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	filters := selection.VisibleFilters(kind)
	if filters == nil {
		filters = []selection.Filter{}
	}
	writeJSON(w, FiltersResponse{Kind: kind, Filters: filters})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel := selection.Selection{}
	events := []selection.Event{
		{Type: selection.ChartChanged, Value: r.PathValue("kind")},
		{Type: selection.TickerChanged, Value: q.Get("ticker")},
		{Type: selection.YearChanged, Value: q.Get("year")},
	}
	for _, e := range events {
		var err error
		if sel, err = selection.Apply(sel, e); err != nil {
			s.writeErr(w, r, err)
			return
		}
	}

	res, err := s.charts.Build(sel)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleDates(w http.ResponseWriter, r *http.Request) {
	ticker := domain.NormalizeTicker(r.PathValue("ticker"))
	dates, err := s.charts.Dates(ticker)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.String()
	}
	writeJSON(w, DatesResponse{Ticker: ticker, Dates: out})
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	in, err := parseCalculatorInput(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	res, err := s.charts.Calculate(in)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, CalculateResponse{Result: res, Display: summary.FormatReturn(res)})
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil {
		s.writeErr(w, r, fmt.Errorf("%w: year %q", domain.ErrInvalidSelection, r.PathValue("year")))
		return
	}
	tile, err := s.charts.Tile(year, r.PathValue("ticker"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, TileResponse{Tile: tile, Display: summary.FormatTile(year, tile)})
}

// parseCalculatorInput reads ticker, start, end and amount from the query.
// Unparsable dates are reported as invalid selections, an unparsable amount
// as an invalid amount.
func parseCalculatorInput(r *http.Request) (selection.CalculatorInput, error) {
	q := r.URL.Query()

	sel := selection.Selection{}
	for _, e := range []selection.Event{
		{Type: selection.TickerChanged, Value: q.Get("ticker")},
		{Type: selection.StartDateChanged, Value: q.Get("start")},
		{Type: selection.EndDateChanged, Value: q.Get("end")},
	} {
		var err error
		if sel, err = selection.Apply(sel, e); err != nil {
			return selection.CalculatorInput{}, err
		}
	}

	var amount float64
	if v := q.Get("amount"); v != "" {
		var err error
		if amount, err = strconv.ParseFloat(v, 64); err != nil {
			return selection.CalculatorInput{}, errors.Join(domain.ErrInvalidAmount, err)
		}
	}
	return selection.CalculatorInput{
		Ticker:    sel.Ticker,
		StartDate: sel.StartDate,
		EndDate:   sel.EndDate,
		Amount:    amount,
	}, nil
}

// ---------------------------------------------------------------------------
// Responses
// ---------------------------------------------------------------------------

// StatusFor maps a taxonomy error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingSelection),
		errors.Is(err, domain.ErrInvalidSelection),
		errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownTicker),
		errors.Is(err, domain.ErrNoDataForSelection),
		errors.Is(err, domain.ErrMissingDateRecord):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptySeries),
		errors.Is(err, domain.ErrEmptyTreemap),
		errors.Is(err, domain.ErrDegenerateFit),
		errors.Is(err, domain.ErrDivisionByZero):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		s.log.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, err.Error(), domain.Code(err))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: msg, Code: code})
}
