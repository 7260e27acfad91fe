// Package series turns catalog records into chart-ready series: a fitted
// regression trend, candlestick columns, pie totals and treemap tiles. All
// builders are pure; they neither log nor touch any display surface.
package series

import (
	"stockviz/internal/domain"
)

// RegressionSeries pairs the actual close prices with an ordinary
// least-squares trend line. X is the zero-based position in the input, not
// elapsed calendar time.
type RegressionSeries struct {
	Dates     []domain.Date `json:"dates"`
	Close     []float64     `json:"close"`
	Fitted    []float64     `json:"fitted"`
	Slope     float64       `json:"slope"`
	Intercept float64       `json:"intercept"`
}

// BuildRegression fits close = slope*i + intercept over records in the given
// order.
func BuildRegression(records []domain.DailyRecord) (*RegressionSeries, error) {
	n := len(records)
	if n == 0 {
		return nil, domain.ErrEmptySeries
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, r := range records {
		x := float64(i)
		sumX += x
		sumY += r.Close
		sumXY += x * r.Close
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return nil, domain.ErrDegenerateFit
	}
	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn

	s := &RegressionSeries{
		Dates:     make([]domain.Date, n),
		Close:     make([]float64, n),
		Fitted:    make([]float64, n),
		Slope:     slope,
		Intercept: intercept,
	}
	for i, r := range records {
		s.Dates[i] = r.Date
		s.Close[i] = r.Close
		s.Fitted[i] = slope*float64(i) + intercept
	}
	return s, nil
}
