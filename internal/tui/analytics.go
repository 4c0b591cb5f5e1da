package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"timewallet/internal/api"
	"timewallet/internal/stores"
)

// analyticsModel renders the server-computed weekly snapshots. All the
// numbers come from the aggregation service; the only local math is the
// percentage share of each category.
type analyticsModel struct {
	ctx    context.Context
	stores *stores.Set
	width  int
	height int

	showLastWeek bool
	chart        barchart.Model
}

func newAnalyticsModel(ctx context.Context, set *stores.Set) analyticsModel {
	return analyticsModel{
		ctx:    ctx,
		stores: set,
		chart:  barchart.New(60, 10),
	}
}

func (m *analyticsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type analyticsDataMsg struct{}

func (m analyticsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		m.stores.Analytics.Fetch(m.ctx, time.Now())
		return analyticsDataMsg{}
	}
}

func (m analyticsModel) update(msg tea.Msg) (analyticsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case analyticsDataMsg:
		m.buildChart()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if !m.showLastWeek {
				m.showLastWeek = true
				m.buildChart()
			}
		case key.Matches(msg, keys.Right):
			if m.showLastWeek {
				m.showLastWeek = false
				m.buildChart()
			}
		case key.Matches(msg, keys.Refresh):
			return m, m.refresh()
		case key.Matches(msg, keys.Back):
			m.stores.Analytics.ClearError()
		}
	}
	return m, nil
}

func (m analyticsModel) snapshot() *api.AnalyticsSnapshot {
	if m.showLastWeek {
		return m.stores.Analytics.LastWeek()
	}
	return m.stores.Analytics.ThisWeek()
}

func (m *analyticsModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if m.height > 30 {
		chartHeight = 14
	}

	m.chart = barchart.New(chartWidth, chartHeight)

	snap := m.snapshot()
	if snap == nil {
		return
	}

	var bars []barchart.BarData
	for _, d := range snap.Daily {
		label := d.Date
		if day, err := time.ParseInLocation("2006-01-02", d.Date, time.Local); err == nil {
			label = day.Format("Mon 02")
		}

		var values []barchart.BarValue
		if len(d.ByCategory) > 0 {
			for _, c := range d.ByCategory {
				cat := m.stores.Categories.Lookup(c.CategoryID)
				values = append(values, barchart.BarValue{
					Name:  c.Name,
					Value: float64(c.Minutes) / 60.0,
					Style: lipgloss.NewStyle().Foreground(lipgloss.Color(cat.Color)),
				})
			}
		} else {
			values = []barchart.BarValue{{
				Name:  "",
				Value: float64(d.SpentMin) / 60.0,
				Style: lipgloss.NewStyle().Foreground(colorPrimary),
			}}
		}

		bars = append(bars, barchart.BarData{Label: label, Values: values})
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m analyticsModel) view() string {
	w := m.width - 4

	thisTab := inactiveTabStyle.Render("Last Week")
	currentTab := activeTabStyle.Render("This Week")
	if m.showLastWeek {
		thisTab = activeTabStyle.Render("Last Week")
		currentTab = inactiveTabStyle.Render("This Week")
	}
	weekTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, thisTab, currentTab)

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Analytics"), "  ", weekTabs,
	)

	var rows []string
	rows = append(rows, header)

	if msg := m.stores.Analytics.Err(); msg != "" {
		rows = append(rows, "", bannerStyle.Render(msg+"  (esc to dismiss)"))
	}

	snap := m.snapshot()
	if snap == nil {
		if m.stores.Analytics.IsLoading() {
			rows = append(rows, "", mutedStyle.Render("Loading analytics..."))
		} else {
			rows = append(rows, "", mutedStyle.Render("No analytics yet. Press r to load."))
		}
		rows = append(rows, "", mutedStyle.Render("  ←/→: week  r: refresh"))
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	rows = append(rows, mutedStyle.Render("Week of "+snap.WeekStart))
	rows = append(rows, "")
	rows = append(rows, m.chart.View())
	rows = append(rows, "")
	rows = append(rows, m.renderStats(snap))
	rows = append(rows, "")
	rows = append(rows, m.renderShares(snap))
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  ←/→: week  r: refresh"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m analyticsModel) renderStats(snap *api.AnalyticsSnapshot) string {
	focus := "–"
	if total := snap.FocusRatio.ActiveMin + snap.FocusRatio.RestMin; total > 0 {
		focus = fmt.Sprintf("%d%%", int(float64(snap.FocusRatio.ActiveMin)/float64(total)*100+0.5))
	}

	stats := []string{
		fmt.Sprintf("  Total %s", highlightStyle.Render(formatMinutes(snap.TotalMinutes))),
		fmt.Sprintf("Rest %s", normalItemStyle.Render(formatMinutes(snap.TotalRestMinutes))),
		fmt.Sprintf("Focus %s", normalItemStyle.Render(focus)),
		fmt.Sprintf("Streak %s", normalItemStyle.Render(fmt.Sprintf("%dd", snap.Streak))),
		fmt.Sprintf("Avg productive %s", normalItemStyle.Render(formatHours(snap.AverageProductiveHours))),
	}
	line := strings.Join(stats, "   ")

	// Week-over-week delta when both snapshots are present.
	this, last := m.stores.Analytics.ThisWeek(), m.stores.Analytics.LastWeek()
	if this != nil && last != nil {
		delta := this.TotalMinutes - last.TotalMinutes
		switch {
		case delta > 0:
			line += successStyle.Render(fmt.Sprintf("   ▲ %s vs last week", formatMinutes(delta)))
		case delta < 0:
			line += warningStyle.Render(fmt.Sprintf("   ▼ %s vs last week", formatMinutes(-delta)))
		}
	}
	return line
}

func (m analyticsModel) renderShares(snap *api.AnalyticsSnapshot) string {
	shares := stores.TopCategoryShares(snap, 5)
	if len(shares) == 0 {
		return mutedStyle.Render("  No category breakdown for this week")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-20s %8s %6s", "Category", "Time", "Share")))
	for _, s := range shares {
		cat := m.stores.Categories.Lookup(s.CategoryID)
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(cat.Color)).Render("●")
		rows = append(rows, fmt.Sprintf("  %s %-18s %8s %5d%%",
			dot, s.Name, formatMinutes(s.Minutes), s.Percent,
		))
	}
	return strings.Join(rows, "\n")
}
