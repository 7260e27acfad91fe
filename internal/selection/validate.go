package selection

import (
	"fmt"

	"stockviz/internal/calculator"
	"stockviz/internal/domain"
)

// Validate checks that sel carries every field its chart kind requires.
// All missing fields are reported together.
func Validate(sel Selection) error {
	var missing []string
	switch sel.Kind {
	case ChartRegression, ChartCandlestick:
		if sel.Ticker == "" {
			missing = append(missing, string(FilterTicker))
		}
		if sel.Year == 0 {
			missing = append(missing, string(FilterYear))
		}
	case ChartTreemap:
		if sel.Year == 0 {
			missing = append(missing, string(FilterYear))
		}
	case ChartPie:
	case "":
		missing = append(missing, "chart")
	default:
		return fmt.Errorf("%w: unknown chart kind %q", domain.ErrInvalidSelection, sel.Kind)
	}
	if len(missing) > 0 {
		return &domain.MissingFieldsError{Fields: missing}
	}
	return nil
}

// Resolve returns the records a ticker/year selection refers to: the year
// bucket, restricted to records dated in that calendar year, sorted by
// date. An absent or empty result is ErrNoDataForSelection.
func Resolve(c *domain.Catalog, sel Selection) ([]domain.DailyRecord, error) {
	if err := Validate(sel); err != nil {
		return nil, err
	}
	recs, ok := c.Records(sel.Ticker, sel.Year)
	if !ok || len(recs) == 0 {
		return nil, fmt.Errorf("%w: %s in %d", domain.ErrNoDataForSelection, sel.Ticker, sel.Year)
	}

	filtered := recs[:0]
	for _, r := range recs {
		if r.Date.Year() == sel.Year {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("%w: %s in %d has no records dated that year", domain.ErrNoDataForSelection, sel.Ticker, sel.Year)
	}
	domain.SortByDate(filtered)
	return filtered, nil
}

// CalculatorInput is the calculator form.
type CalculatorInput struct {
	Ticker    string      `json:"ticker"`
	StartDate domain.Date `json:"startDate"`
	EndDate   domain.Date `json:"endDate"`
	Amount    float64     `json:"amount"`
}

// ValidateCalculator checks the amount and that every field is present.
// Existence of the ticker and dates is left to the calculator.
func ValidateCalculator(in CalculatorInput) error {
	if err := calculator.ValidateAmount(in.Amount); err != nil {
		return err
	}
	var missing []string
	if in.Ticker == "" {
		missing = append(missing, "ticker")
	}
	if in.StartDate.IsZero() {
		missing = append(missing, "start")
	}
	if in.EndDate.IsZero() {
		missing = append(missing, "end")
	}
	if len(missing) > 0 {
		return &domain.MissingFieldsError{Fields: missing}
	}
	return nil
}
