package series

import "stockviz/internal/domain"

// CandlestickSeries is a columnar copy of the records, index-aligned.
type CandlestickSeries struct {
	Dates []domain.Date `json:"dates"`
	Open  []float64     `json:"open"`
	High  []float64     `json:"high"`
	Low   []float64     `json:"low"`
	Close []float64     `json:"close"`
}

// BuildCandlestick transcribes records into columns without reordering.
func BuildCandlestick(records []domain.DailyRecord) (*CandlestickSeries, error) {
	n := len(records)
	if n == 0 {
		return nil, domain.ErrEmptySeries
	}
	s := &CandlestickSeries{
		Dates: make([]domain.Date, n),
		Open:  make([]float64, n),
		High:  make([]float64, n),
		Low:   make([]float64, n),
		Close: make([]float64, n),
	}
	for i, r := range records {
		s.Dates[i] = r.Date
		s.Open[i] = r.Open
		s.High[i] = r.High
		s.Low[i] = r.Low
		s.Close[i] = r.Close
	}
	return s, nil
}
