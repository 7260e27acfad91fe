package console

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"stockviz/internal/chart"
	"stockviz/internal/domain"
	"stockviz/internal/selection"
)

func testCharts() *chart.Builder {
	b := domain.NewCatalogBuilder()
	for _, t := range []string{"AAA", "BBB"} {
		b.Add(t, 2020,
			domain.DailyRecord{Date: domain.NewDate(2020, 1, 2), Open: 10, High: 11, Low: 9, Close: 10, MarketCap: 1e9},
			domain.DailyRecord{Date: domain.NewDate(2020, 1, 3), Open: 10, High: 13, Low: 10, Close: 12, MarketCap: 1.2e9},
		)
		b.Add(t, 2021,
			domain.DailyRecord{Date: domain.NewDate(2021, 1, 4), Open: 12, High: 12, Low: 8, Close: 9, MarketCap: 0.9e9},
			domain.DailyRecord{Date: domain.NewDate(2021, 1, 5), Open: 9, High: 10, Low: 8, Close: 10, MarketCap: 1e9},
		)
	}
	c := b.Build()
	return chart.NewBuilder(c, domain.ManifestFromCatalog(c), chart.DefaultOptions())
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestNewModelDefaults(t *testing.T) {
	m := New(testCharts())
	sel := m.Selection()
	if sel.Kind != selection.ChartRegression || sel.Ticker != "AAA" || sel.Year != 2020 {
		t.Errorf("initial selection = %+v", sel)
	}
	if m.View() != "Loading..." {
		t.Errorf("View before sizing = %q", m.View())
	}
}

func TestKeysDriveSelection(t *testing.T) {
	m := send(New(testCharts()), tea.WindowSizeMsg{Width: 100, Height: 30})
	if !strings.Contains(m.View(), "AAA Regression Graph (2020)") {
		t.Fatalf("view missing regression title:\n%s", m.View())
	}

	m = send(m, key("right"), key("]"))
	if sel := m.Selection(); sel.Ticker != "BBB" || sel.Year != 2021 {
		t.Errorf("selection = %+v, want BBB 2021", sel)
	}

	m = send(m, key("tab"))
	if m.Selection().Kind != selection.ChartCandlestick {
		t.Errorf("kind = %s, want candlestick", m.Selection().Kind)
	}
	if !strings.Contains(m.View(), "BBB Candlestick Chart (2021)") {
		t.Errorf("view missing candlestick title:\n%s", m.View())
	}

	m = send(m, key("tab"))
	if !strings.Contains(m.View(), "Stock Performance (2015-2025)") {
		t.Errorf("view missing pie title:\n%s", m.View())
	}
}

func TestTreemapGetsDefaultYearAfterReset(t *testing.T) {
	m := send(New(testCharts()), tea.WindowSizeMsg{Width: 100, Height: 30})
	m = send(m, key("tab"), key("tab"), key("tab"))
	if m.Selection().Kind != selection.ChartTreemap {
		t.Fatalf("kind = %s, want treemap", m.Selection().Kind)
	}

	m = send(m, key("r"))
	if m.Selection().Year != 2020 {
		t.Errorf("treemap year after reset = %d, want default 2020", m.Selection().Year)
	}
	if !strings.Contains(m.View(), "Treemap for 2020") {
		t.Errorf("view missing treemap title:\n%s", m.View())
	}
}

func TestErrorsAreShown(t *testing.T) {
	m := send(New(testCharts()), tea.WindowSizeMsg{Width: 100, Height: 30})
	m = send(m, key("r"))
	if !errors.Is(m.Err(), domain.ErrMissingSelection) {
		t.Errorf("Err = %v, want ErrMissingSelection", m.Err())
	}
	if !strings.Contains(m.View(), "[MissingSelection]") {
		t.Errorf("view missing error tag:\n%s", m.View())
	}
}

func TestCalculatorMode(t *testing.T) {
	m := send(New(testCharts()), tea.WindowSizeMsg{Width: 200, Height: 30}, key("c"))
	// First trading day close 10, last close 10: 100 shares worth $1,000.00.
	if !strings.Contains(m.View(), "would be worth $1,000.00") {
		t.Errorf("calculator view:\n%s", m.View())
	}

	m = send(m, key("E"), key("+"))
	// End moves to 2021-01-04 (close 9); amount 1100 buys 110 shares.
	if !strings.Contains(m.View(), "would be worth $990.00") {
		t.Errorf("calculator view after stepping:\n%s", m.View())
	}
}
