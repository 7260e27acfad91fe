package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"stockviz/internal/calculator"
	"stockviz/internal/chart"
	"stockviz/internal/series"
	"stockviz/internal/summary"
)

// Styles.
var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	colHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	gainStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	barStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

const maxBarWidth = 40

// RenderChart draws a chart result as plain rows.
func RenderChart(res *chart.Result) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(res.Title))
	b.WriteString("\n\n")
	switch {
	case res.Regression != nil:
		renderRegression(&b, res.Regression)
	case res.Candlestick != nil:
		renderCandlestick(&b, res.Candlestick)
	case res.Pie != nil:
		renderPie(&b, res.Pie)
	case res.Treemap != nil:
		renderTreemap(&b, res.Treemap)
	}
	return b.String()
}

func renderRegression(b *strings.Builder, s *series.RegressionSeries) {
	fmt.Fprintf(b, "trend: close = %.4f * day + %.4f\n\n", s.Slope, s.Intercept)
	b.WriteString(colHeaderStyle.Render(fmt.Sprintf("%-10s  %10s  %10s  %8s", "date", "close", "trend", "resid")))
	b.WriteString("\n")
	for i, d := range s.Dates {
		resid := s.Close[i] - s.Fitted[i]
		style := gainStyle
		if resid < 0 {
			style = lossStyle
		}
		fmt.Fprintf(b, "%-10s  %10.2f  %10.2f  %s\n", d, s.Close[i], s.Fitted[i], style.Render(fmt.Sprintf("%+8.2f", resid)))
	}
}

func renderCandlestick(b *strings.Builder, s *series.CandlestickSeries) {
	b.WriteString(colHeaderStyle.Render(fmt.Sprintf("%-10s  %9s  %9s  %9s  %9s", "date", "open", "high", "low", "close")))
	b.WriteString("\n")
	for i, d := range s.Dates {
		style := gainStyle
		if s.Close[i] < s.Open[i] {
			style = lossStyle
		}
		row := fmt.Sprintf("%-10s  %9.2f  %9.2f  %9.2f  %9.2f", d, s.Open[i], s.High[i], s.Low[i], s.Close[i])
		b.WriteString(style.Render(row))
		b.WriteString("\n")
	}
}

func renderPie(b *strings.Builder, p *series.PieSeries) {
	total := 0.0
	for _, sl := range p.Slices {
		total += sl.TotalClose
	}
	b.WriteString(colHeaderStyle.Render(fmt.Sprintf("%-8s  %14s  %7s", "ticker", "total close", "share")))
	b.WriteString("\n")
	for _, sl := range p.Slices {
		share := 0.0
		if total > 0 {
			share = sl.TotalClose / total
		}
		bar := barStyle.Render(strings.Repeat("█", int(share*maxBarWidth+0.5)))
		fmt.Fprintf(b, "%-8s  %14.2f  %6.2f%%  %s\n", sl.Ticker, sl.TotalClose, share*100, bar)
	}
	if len(p.NoData) > 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("no data in range: " + strings.Join(p.NoData, ", ")))
		b.WriteString("\n")
	}
}

func renderTreemap(b *strings.Builder, t *series.TreemapSeries) {
	fmt.Fprintf(b, "change scale: %.2f%% .. %.2f%%\n\n", t.ColorMin, t.ColorMax)
	b.WriteString(colHeaderStyle.Render(fmt.Sprintf("%-8s  %12s  %10s  %10s  %9s", "ticker", "mcap ($B)", "first", "last", "change")))
	b.WriteString("\n")
	for _, tile := range t.Tiles {
		style := gainStyle
		if tile.PercentChange < 0 {
			style = lossStyle
		}
		fmt.Fprintf(b, "%-8s  %12.2f  %10.2f  %10.2f  %s\n",
			tile.Ticker, tile.MarketCapBillions, tile.FirstClose, tile.LastClose,
			style.Render(fmt.Sprintf("%+8.2f%%", tile.PercentChange)))
	}
}

// RenderReturn draws a calculator result.
func RenderReturn(r *calculator.Result) string {
	d := summary.FormatReturn(r)
	var b strings.Builder
	b.WriteString(titleStyle.Render("Investment Calculator"))
	b.WriteString("\n\n")
	b.WriteString(d.Sentence)
	b.WriteString("\n")
	if d.Warning != "" {
		b.WriteString(warnStyle.Render("note: " + d.Warning))
		b.WriteString("\n")
	}
	return b.String()
}

func padOrTrunc(s string, width int) string {
	n := len(s)
	if n >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-n)
}
