// Package selection models what the user has picked: chart kind, ticker,
// year and calculator dates. A Selection is a plain value; every user event
// produces a new Selection through Apply, and rendering happens separately
// in whichever adapter drives the transitions.
package selection

import (
	"fmt"
	"strconv"
	"strings"

	"stockviz/internal/domain"
)

// ChartKind enumerates the supported visualizations.
type ChartKind string

const (
	ChartRegression  ChartKind = "regression"
	ChartCandlestick ChartKind = "candlestick"
	ChartPie         ChartKind = "pie"
	ChartTreemap     ChartKind = "treemap"
)

// ChartKinds lists every kind in menu order.
var ChartKinds = []ChartKind{ChartRegression, ChartCandlestick, ChartPie, ChartTreemap}

// ParseChartKind accepts a kind name in any case.
func ParseChartKind(s string) (ChartKind, error) {
	k := ChartKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ChartKinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown chart kind %q", domain.ErrInvalidSelection, s)
}

// Selection is the current user choice. Year 0 and zero dates mean unset.
type Selection struct {
	Kind      ChartKind   `json:"kind"`
	Ticker    string      `json:"ticker,omitempty"`
	Year      int         `json:"year,omitempty"`
	StartDate domain.Date `json:"startDate,omitzero"`
	EndDate   domain.Date `json:"endDate,omitzero"`
}

// Filter names a selection control the page shows for a chart kind.
type Filter string

const (
	FilterTicker Filter = "ticker"
	FilterYear   Filter = "year"
)

// VisibleFilters returns the controls that apply to kind: none for pie,
// only the year for treemap, ticker and year otherwise.
func VisibleFilters(kind ChartKind) []Filter {
	switch kind {
	case ChartPie:
		return nil
	case ChartTreemap:
		return []Filter{FilterYear}
	default:
		return []Filter{FilterTicker, FilterYear}
	}
}

// DefaultYear is the first manifest year, or 0 when the manifest has none.
func DefaultYear(m domain.Manifest) int {
	if len(m.Years) == 0 {
		return 0
	}
	return m.Years[0]
}

// ---------------------------------------------------------------------------
// Transitions
// ---------------------------------------------------------------------------

// EventType identifies which control changed.
type EventType int

const (
	ChartChanged EventType = iota
	TickerChanged
	YearChanged
	StartDateChanged
	EndDateChanged
	Reset
)

func (e EventType) String() string {
	switch e {
	case ChartChanged:
		return "chart"
	case TickerChanged:
		return "ticker"
	case YearChanged:
		return "year"
	case StartDateChanged:
		return "start"
	case EndDateChanged:
		return "end"
	case Reset:
		return "reset"
	}
	return fmt.Sprintf("EventType(%d)", int(e))
}

// Event is one user interaction. Value is the raw control value; an empty
// Value clears the field.
type Event struct {
	Type  EventType
	Value string
}

// Apply returns the selection that results from e. s is never modified. An
// unparsable value yields ErrInvalidSelection and the unchanged selection.
func Apply(s Selection, e Event) (Selection, error) {
	v := strings.TrimSpace(e.Value)
	switch e.Type {
	case ChartChanged:
		k, err := ParseChartKind(v)
		if err != nil {
			return s, err
		}
		s.Kind = k
	case TickerChanged:
		s.Ticker = domain.NormalizeTicker(v)
	case YearChanged:
		if v == "" {
			s.Year = 0
			break
		}
		y, err := strconv.Atoi(v)
		if err != nil || y <= 0 {
			return s, fmt.Errorf("%w: year %q", domain.ErrInvalidSelection, e.Value)
		}
		s.Year = y
	case StartDateChanged, EndDateChanged:
		var d domain.Date
		if v != "" {
			var err error
			if d, err = domain.ParseDate(v); err != nil {
				return s, fmt.Errorf("%w: %s date: %v", domain.ErrInvalidSelection, e.Type, err)
			}
		}
		if e.Type == StartDateChanged {
			s.StartDate = d
		} else {
			s.EndDate = d
		}
	case Reset:
		return Selection{Kind: s.Kind}, nil
	default:
		return s, fmt.Errorf("%w: unknown event %v", domain.ErrInvalidSelection, e.Type)
	}
	return s, nil
}
