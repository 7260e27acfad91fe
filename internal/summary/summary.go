// Package summary formats calculator results and treemap tiles into the
// strings shown to the user. Values are rounded only here; the core keeps
// full precision.
package summary

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"stockviz/internal/calculator"
	"stockviz/internal/series"
)

const currency = money.USD

// notANumber is shown for infinite or NaN values.
const notANumber = "n/a"

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

func finite(v float64) bool { return !math.IsInf(v, 0) && !math.IsNaN(v) }

// USD renders v as dollars rounded to cents, e.g. "$1,500.00". Amounts too
// large for int64 cents are grouped from the decimal form.
func USD(v float64) string {
	if !finite(v) {
		return notANumber
	}
	cur := money.GetCurrency(currency)
	d := decimal.NewFromFloat(v).Round(int32(cur.Fraction))
	minor := d.Shift(int32(cur.Fraction))
	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return groupedUSD(d, int32(cur.Fraction))
	}
	return money.New(minor.IntPart(), currency).Display()
}

// groupedUSD formats d like money's USD display: "-$1,234.50".
func groupedUSD(d decimal.Decimal, places int32) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	whole, frac, _ := strings.Cut(d.Abs().StringFixed(places), ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteString("." + frac)
	}
	return sign + "$" + b.String()
}

// Shares renders a share count with four decimals.
func Shares(v float64) string {
	if !finite(v) {
		return notANumber
	}
	return decimal.NewFromFloat(v).StringFixed(4)
}

// Fixed2 renders v with two decimals.
func Fixed2(v float64) string {
	if !finite(v) {
		return notANumber
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Return holds the display strings of a calculator result.
type Return struct {
	Amount     string `json:"amount"`
	StartClose string `json:"startClose"`
	FinalValue string `json:"finalValue"`
	Shares     string `json:"shares"`
	Sentence   string `json:"sentence"`
	Warning    string `json:"warning,omitempty"`
}

// FormatReturn builds the display strings for r.
func FormatReturn(r *calculator.Result) Return {
	out := Return{
		Amount:     USD(r.Amount),
		StartClose: USD(r.StartClose),
		FinalValue: USD(r.FinalValue),
		Shares:     Shares(r.Shares),
	}
	out.Sentence = fmt.Sprintf("Investing %s in %s on %s at %s per share would be worth %s on %s (shares bought: %s).",
		out.Amount, r.Ticker, r.StartDate, out.StartClose, out.FinalValue, r.EndDate, out.Shares)
	if r.Reversed {
		out.Warning = fmt.Sprintf("end date %s is before start date %s", r.EndDate, r.StartDate)
	}
	return out
}

// Tile holds the display strings of a clicked treemap tile.
type Tile struct {
	Heading       string `json:"heading"`
	MarketCap     string `json:"marketCap"`
	FirstClose    string `json:"firstClose"`
	LastClose     string `json:"lastClose"`
	PercentChange string `json:"percentChange"`
	NewsURL       string `json:"newsUrl"`
}

// FormatTile builds the summary shown for a treemap tile.
func FormatTile(year int, t series.TreemapTile) Tile {
	return Tile{
		Heading:       fmt.Sprintf("%s Summary for %d", t.Ticker, year),
		MarketCap:     "$" + Fixed2(t.MarketCapBillions) + " Billion",
		FirstClose:    "$" + Fixed2(t.FirstClose),
		LastClose:     "$" + Fixed2(t.LastClose),
		PercentChange: Fixed2(t.PercentChange) + "%",
		NewsURL:       NewsURL(t.Ticker),
	}
}

// NewsURL links to the Yahoo Finance news page of ticker.
func NewsURL(ticker string) string {
	t := url.PathEscape(ticker)
	return "https://finance.yahoo.com/quote/" + t + "/news?p=" + url.QueryEscape(ticker)
}
