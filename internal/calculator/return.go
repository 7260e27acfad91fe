// Package calculator computes what an investment in one ticker would have
// grown to between two trading days.
package calculator

import (
	"fmt"
	"math"

	"stockviz/internal/domain"
)

// Result is the unrounded outcome of a return calculation.
type Result struct {
	Ticker     string      `json:"ticker"`
	StartDate  domain.Date `json:"startDate"`
	EndDate    domain.Date `json:"endDate"`
	Amount     float64     `json:"amount"`
	StartClose float64     `json:"startClose"`
	EndClose   float64     `json:"endClose"`
	Shares     float64     `json:"shares"`
	FinalValue float64     `json:"finalValue"`
	// Reversed is set when end precedes start. The calculation still runs.
	Reversed bool `json:"reversed,omitempty"`
}

// ValidateAmount rejects zero, negative, NaN and infinite amounts.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidAmount, amount)
	}
	return nil
}

// ComputeReturn buys amount worth of ticker at the close of start and values
// the shares at the close of end. Preconditions are checked in order:
// amount, ticker, start record, end record.
func ComputeReturn(c *domain.Catalog, ticker string, start, end domain.Date, amount float64) (*Result, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	ticker = domain.NormalizeTicker(ticker)
	if !c.HasTicker(ticker) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTicker, ticker)
	}

	startRec, startOK := findDate(c, ticker, start)
	if !startOK {
		return nil, &domain.MissingDateError{Which: "start", Ticker: ticker, Date: start}
	}
	endRec, endOK := findDate(c, ticker, end)
	if !endOK {
		return nil, &domain.MissingDateError{Which: "end", Ticker: ticker, Date: end}
	}
	if startRec.Close == 0 {
		return nil, fmt.Errorf("%w: %s close on %s is zero", domain.ErrDivisionByZero, ticker, start)
	}

	shares := amount / startRec.Close
	final := shares * endRec.Close
	if math.IsInf(shares, 0) || math.IsInf(final, 0) || math.IsNaN(final) {
		return nil, fmt.Errorf("%w: %v overflows at %s close %v", domain.ErrInvalidAmount, amount, ticker, startRec.Close)
	}
	return &Result{
		Ticker:     ticker,
		StartDate:  start,
		EndDate:    end,
		Amount:     amount,
		StartClose: startRec.Close,
		EndClose:   endRec.Close,
		Shares:     shares,
		FinalValue: final,
		Reversed:   end.Before(start),
	}, nil
}

// findDate scans every year bucket; the last matching record wins.
func findDate(c *domain.Catalog, ticker string, d domain.Date) (domain.DailyRecord, bool) {
	if d.IsZero() {
		return domain.DailyRecord{}, false
	}
	var (
		found domain.DailyRecord
		ok    bool
	)
	for _, r := range c.AllRecords(ticker) {
		if r.Date == d {
			found, ok = r, true
		}
	}
	return found, ok
}

// AvailableDates lists every distinct record date of ticker, ascending.
func AvailableDates(c *domain.Catalog, ticker string) ([]domain.Date, error) {
	ticker = domain.NormalizeTicker(ticker)
	if !c.HasTicker(ticker) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTicker, ticker)
	}
	recs := c.AllRecords(ticker)
	domain.SortByDate(recs)

	dates := make([]domain.Date, 0, len(recs))
	for _, r := range recs {
		if n := len(dates); n > 0 && dates[n-1] == r.Date {
			continue
		}
		dates = append(dates, r.Date)
	}
	return dates, nil
}
