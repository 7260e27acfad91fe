// Package stockviz is a Go client for the stockviz-server HTTP API.
package stockviz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client provides a Go SDK for interacting with the stockviz-server API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new stockviz API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response. Code is the server's error tag, e.g.
// "NoDataForSelection".
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stockviz: %d %s: %s", e.Status, e.Code, e.Message)
}

// Manifest is the set of selectable tickers and years.
type Manifest struct {
	Stocks      []string `json:"stocks"`
	Years       []int    `json:"years"`
	ChartKinds  []string `json:"chartKinds"`
	DefaultYear int      `json:"defaultYear"`
	PieYears    struct {
		From int `json:"from"`
		To   int `json:"to"`
	} `json:"pieYears"`
}

// Return is a calculator result together with its display sentence.
type Return struct {
	Result struct {
		Ticker     string  `json:"ticker"`
		StartDate  string  `json:"startDate"`
		EndDate    string  `json:"endDate"`
		Amount     float64 `json:"amount"`
		StartClose float64 `json:"startClose"`
		EndClose   float64 `json:"endClose"`
		Shares     float64 `json:"shares"`
		FinalValue float64 `json:"finalValue"`
		Reversed   bool    `json:"reversed"`
	} `json:"result"`
	Display struct {
		Sentence string `json:"sentence"`
		Warning  string `json:"warning"`
	} `json:"display"`
}

// Health reports whether the server answers its health check.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/health", nil, &out); err != nil {
		return err
	}
	if out.Status != "ok" {
		return fmt.Errorf("stockviz: health status %q", out.Status)
	}
	return nil
}

// Manifest retrieves the selectable tickers and years.
func (c *Client) Manifest(ctx context.Context) (*Manifest, error) {
	var m Manifest
	if err := c.get(ctx, "/api/manifest", nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Chart retrieves one chart as raw JSON. ticker and year may be empty or
// zero for kinds that do not use them.
func (c *Client) Chart(ctx context.Context, kind, ticker string, year int) (json.RawMessage, error) {
	q := url.Values{}
	if ticker != "" {
		q.Set("ticker", ticker)
	}
	if year != 0 {
		q.Set("year", strconv.Itoa(year))
	}
	var raw json.RawMessage
	if err := c.get(ctx, "/api/chart/"+url.PathEscape(kind), q, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Dates lists the trading days of a ticker as YYYY-MM-DD strings.
func (c *Client) Dates(ctx context.Context, ticker string) ([]string, error) {
	var out struct {
		Dates []string `json:"dates"`
	}
	if err := c.get(ctx, "/api/dates/"+url.PathEscape(ticker), nil, &out); err != nil {
		return nil, err
	}
	return out.Dates, nil
}

// Calculate asks what amount invested in ticker on start would be worth on
// end. Dates are YYYY-MM-DD.
func (c *Client) Calculate(ctx context.Context, ticker, start, end string, amount float64) (*Return, error) {
	q := url.Values{}
	q.Set("ticker", ticker)
	q.Set("start", start)
	q.Set("end", end)
	q.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))
	var r Return
	if err := c.get(ctx, "/api/calculate", q, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var e struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			apiErr.Code, apiErr.Message = e.Code, e.Error
		}
		return apiErr
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
