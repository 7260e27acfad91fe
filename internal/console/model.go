// Package console is a terminal front end for the chart builder. Keys feed
// selection events; the view re-renders the chart for the new selection.
package console

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"stockviz/internal/chart"
	"stockviz/internal/domain"
	"stockviz/internal/selection"
)

const amountStep = 100.0

// Model is the Bubble Tea model.
type Model struct {
	charts *chart.Builder
	sel    selection.Selection

	// Calculator mode.
	calcMode bool
	dates    []domain.Date
	startIdx int
	endIdx   int
	amount   float64

	status string
	err    error

	viewport      viewport.Model
	ready         bool
	width, height int
}

// New creates a model showing the regression chart of the first manifest
// ticker and year.
func New(charts *chart.Builder) Model {
	m := Model{charts: charts, amount: 1000}
	man := charts.Manifest()
	m.sel = selection.Selection{Kind: selection.ChartRegression, Year: selection.DefaultYear(man)}
	if len(man.Stocks) > 0 {
		m.sel.Ticker = man.Stocks[0]
	}
	m.loadDates()
	return m
}

// Selection returns the current selection.
func (m Model) Selection() selection.Selection { return m.sel }

// Err returns the error of the last render, if any.
func (m Model) Err() error { return m.err }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.apply(selection.ChartChanged, string(nextKind(m.sel.Kind, 1)))
		case "shift+tab":
			m.apply(selection.ChartChanged, string(nextKind(m.sel.Kind, -1)))
		case "right", "l":
			m.apply(selection.TickerChanged, m.step(m.charts.Manifest().Stocks, m.sel.Ticker, 1))
			m.loadDates()
		case "left", "h":
			m.apply(selection.TickerChanged, m.step(m.charts.Manifest().Stocks, m.sel.Ticker, -1))
			m.loadDates()
		case "]":
			m.apply(selection.YearChanged, m.stepYear(1))
		case "[":
			m.apply(selection.YearChanged, m.stepYear(-1))
		case "r":
			m.apply(selection.Reset, "")
		case "c":
			m.calcMode = !m.calcMode
		case "s", "S", "e", "E":
			m.stepDate(msg.String())
		case "+", "=":
			m.amount += amountStep
		case "-":
			if m.amount > amountStep {
				m.amount -= amountStep
			}
		default:
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		m.refresh()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerH := 1
		footerH := 1
		vpHeight := m.height - headerH - footerH
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refresh()
		return m, nil
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// apply runs one selection transition. Switching to the treemap without a
// year picks the first manifest year.
func (m *Model) apply(t selection.EventType, value string) {
	next, err := selection.Apply(m.sel, selection.Event{Type: t, Value: value})
	if err != nil {
		m.status = err.Error()
		return
	}
	if next.Kind == selection.ChartTreemap && next.Year == 0 {
		next.Year = selection.DefaultYear(m.charts.Manifest())
	}
	m.sel = next
	m.status = ""
}

func nextKind(k selection.ChartKind, dir int) selection.ChartKind {
	kinds := selection.ChartKinds
	i := slices.Index(kinds, k)
	return kinds[(i+dir+len(kinds))%len(kinds)]
}

// step returns the neighbour of cur in list, wrapping around.
func (m *Model) step(list []string, cur string, dir int) string {
	if len(list) == 0 {
		return cur
	}
	i := slices.Index(list, cur)
	if i < 0 {
		return list[0]
	}
	return list[(i+dir+len(list))%len(list)]
}

func (m *Model) stepYear(dir int) string {
	years := m.charts.Manifest().Years
	if len(years) == 0 {
		return ""
	}
	i := slices.Index(years, m.sel.Year)
	if i < 0 {
		return strconv.Itoa(years[0])
	}
	return strconv.Itoa(years[(i+dir+len(years))%len(years)])
}

// loadDates refreshes the calculator date choices for the current ticker:
// start at the first trading day, end at the last.
func (m *Model) loadDates() {
	m.dates, m.startIdx, m.endIdx = nil, 0, 0
	if m.sel.Ticker == "" {
		return
	}
	dates, err := m.charts.Dates(m.sel.Ticker)
	if err != nil {
		return
	}
	m.dates = dates
	m.endIdx = len(dates) - 1
}

func (m *Model) stepDate(key string) {
	if len(m.dates) == 0 {
		return
	}
	n := len(m.dates)
	switch key {
	case "s":
		m.startIdx = (m.startIdx + 1) % n
	case "S":
		m.startIdx = (m.startIdx - 1 + n) % n
	case "e":
		m.endIdx = (m.endIdx + 1) % n
	case "E":
		m.endIdx = (m.endIdx - 1 + n) % n
	}
}

// content renders the chart or calculator for the current state.
func (m *Model) content() string {
	m.err = nil
	if m.calcMode {
		in := selection.CalculatorInput{Ticker: m.sel.Ticker, Amount: m.amount}
		if len(m.dates) > 0 {
			in.StartDate = m.dates[m.startIdx]
			in.EndDate = m.dates[m.endIdx]
		}
		res, err := m.charts.Calculate(in)
		if err != nil {
			m.err = err
			return errorStyle.Render(fmt.Sprintf("[%s] %v", domain.Code(err), err))
		}
		return RenderReturn(res)
	}

	res, err := m.charts.Build(m.sel)
	if err != nil {
		m.err = err
		return errorStyle.Render(fmt.Sprintf("[%s] %v", domain.Code(err), err))
	}
	return RenderChart(res)
}

func (m *Model) refresh() {
	body := m.content()
	if m.ready {
		m.viewport.SetContent(body)
		m.viewport.GotoTop()
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var headerText string
	if m.calcMode {
		start, end := "-", "-"
		if len(m.dates) > 0 {
			start, end = m.dates[m.startIdx].String(), m.dates[m.endIdx].String()
		}
		headerText = fmt.Sprintf(" calculator  %s  %s -> %s  amount: %.2f ", m.sel.Ticker, start, end, m.amount)
	} else {
		headerText = fmt.Sprintf(" %s", m.sel.Kind)
		for _, f := range selection.VisibleFilters(m.sel.Kind) {
			switch f {
			case selection.FilterTicker:
				headerText += "  ticker: " + m.sel.Ticker
			case selection.FilterYear:
				headerText += "  year: " + strconv.Itoa(m.sel.Year)
			}
		}
		headerText += " "
	}
	headerBar := headerStyle.Render(padOrTrunc(headerText, m.width))

	footer := " tab chart  h/l ticker  [/] year  c calculator  s/e dates  +/- amount  r reset  q quit"
	if m.status != "" {
		footer = " " + m.status
	}
	footerBar := dimStyle.Render(padOrTrunc(footer, m.width))

	return headerBar + "\n" + m.viewport.View() + "\n" + footerBar
}
