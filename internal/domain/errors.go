package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy. Every failure returned by the series builders, the return
// calculator and the selection validator wraps exactly one of these.
var (
	ErrMissingSelection   = errors.New("missing selection")
	ErrNoDataForSelection = errors.New("no data for selection")
	ErrEmptySeries        = errors.New("empty series")
	ErrEmptyTreemap       = errors.New("empty treemap")
	ErrDegenerateFit      = errors.New("degenerate fit")
	ErrDivisionByZero     = errors.New("division by zero")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrUnknownTicker      = errors.New("unknown ticker")
	ErrMissingDateRecord  = errors.New("missing date record")
	ErrInvalidSelection   = errors.New("invalid selection")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrMissingSelection, "MissingSelection"},
	{ErrNoDataForSelection, "NoDataForSelection"},
	{ErrEmptySeries, "EmptySeries"},
	{ErrEmptyTreemap, "EmptyTreemap"},
	{ErrDegenerateFit, "DegenerateFit"},
	{ErrDivisionByZero, "DivisionByZero"},
	{ErrInvalidAmount, "InvalidAmount"},
	{ErrUnknownTicker, "UnknownTicker"},
	{ErrMissingDateRecord, "MissingDateRecord"},
	{ErrInvalidSelection, "InvalidSelection"},
}

// Code returns the taxonomy tag of err ("MissingSelection", ...) or
// "Internal" when err is outside the taxonomy.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "Internal"
}

// MissingFieldsError names the selection fields a chart kind requires but
// did not receive.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingSelection, strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Unwrap() error { return ErrMissingSelection }

// MissingDateError reports which calculator date has no matching record.
type MissingDateError struct {
	Which  string // "start" or "end"
	Ticker string
	Date   Date
}

func (e *MissingDateError) Error() string {
	return fmt.Sprintf("%v: no %s record for %s on %s", ErrMissingDateRecord, e.Which, e.Ticker, e.Date)
}

func (e *MissingDateError) Unwrap() error { return ErrMissingDateRecord }
