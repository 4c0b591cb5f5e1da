package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"timewallet/internal/export"
	"timewallet/internal/stores"
)

// inactivityTimeout bounds an idle authenticated session; any key press
// resets it.
const inactivityTimeout = 30 * time.Minute

// App is the root Bubble Tea model.
type App struct {
	ctx    context.Context
	stores *stores.Set
	log    *slog.Logger
	width  int
	height int

	authenticated bool
	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	lastActivity  time.Time

	login      loginModel
	today      todayModel
	yesterday  yesterdayModel
	calendar   calendarModel
	analytics  analyticsModel
	categories categoriesModel

	help   help.Model
	status string
}

func NewApp(ctx context.Context, set *stores.Set, log *slog.Logger) App {
	h := help.New()
	h.ShowAll = false

	return App{
		ctx:        ctx,
		stores:     set,
		log:        log,
		activeView: viewToday,
		login:      newLoginModel(ctx, set),
		today:      newTodayModel(ctx, set),
		yesterday:  newYesterdayModel(ctx, set),
		calendar:   newCalendarModel(ctx, set),
		analytics:  newAnalyticsModel(ctx, set),
		categories: newCategoriesModel(ctx, set),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.bootstrap(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// bootstrap restores a persisted session and, when it succeeds, runs
// the once-per-day weekly analytics refresh from this path.
func (a App) bootstrap() tea.Cmd {
	return func() tea.Msg {
		ok, err := a.stores.Auth.Bootstrap(a.ctx)
		if err != nil {
			a.log.Warn("session bootstrap", "error", err)
		}
		if ok {
			a.stores.Analytics.RefreshDaily(a.ctx, a.stores.Session, time.Now())
		}
		return bootstrapMsg{authenticated: ok}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.login.setSize(a.width, a.height)
		a.today.setSize(a.width, contentHeight)
		a.yesterday.setSize(a.width, contentHeight)
		a.calendar.setSize(a.width, contentHeight)
		a.analytics.setSize(a.width, contentHeight)
		a.categories.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		a.lastActivity = time.Now()

		if !a.authenticated {
			var cmd tea.Cmd
			a.login, cmd = a.login.update(msg)
			return a, cmd
		}

		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (a form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Logout):
			return a, a.logout("Logged out")
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewToday
			return a, a.today.refresh()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewYesterday
			return a, a.yesterday.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewCalendar
			return a, a.calendar.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewAnalytics
			return a, a.analytics.refresh()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewCategories
			return a, a.categories.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 5
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		if a.authenticated && !a.lastActivity.IsZero() && time.Since(a.lastActivity) > inactivityTimeout {
			return a, tea.Batch(tickCmd(), a.logout("Logged out after inactivity"))
		}
		return a, tickCmd()

	case bootstrapMsg:
		a.authenticated = msg.authenticated
		if msg.authenticated {
			return a, tea.Batch(a.today.refresh(), a.categories.refresh())
		}
		return a, a.login.focus()

	case loggedInMsg:
		a.authenticated = true
		a.activeView = viewToday
		a.status = ""
		return a, tea.Batch(
			a.dailyAnalyticsRefresh(),
			a.today.refresh(),
			a.categories.refresh(),
		)

	case loggedOutMsg:
		a.authenticated = false
		a.status = msg.reason
		return a, a.login.focus()

	case unauthorizedMsg:
		// The request client already cleared the durable session;
		// drop the in-memory side and land on the login view.
		a.stores.Auth.Invalidate()
		a.authenticated = false
		a.status = "Session expired, please sign in again"
		return a, a.login.focus()

	case statusMsg:
		a.status = msg.text
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil
	}

	if !a.authenticated {
		var cmd tea.Cmd
		a.login, cmd = a.login.update(msg)
		return a, cmd
	}
	return a.updateActiveView(msg)
}

func (a App) dailyAnalyticsRefresh() tea.Cmd {
	return func() tea.Msg {
		a.stores.Analytics.RefreshDaily(a.ctx, a.stores.Session, time.Now())
		return nil
	}
}

func (a App) logout(reason string) tea.Cmd {
	return func() tea.Msg {
		if err := a.stores.Auth.Logout(); err != nil {
			a.log.Error("logout", "error", err)
		}
		return loggedOutMsg{reason: reason}
	}
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewToday:
		a.today, cmd = a.today.update(msg)
	case viewYesterday:
		a.yesterday, cmd = a.yesterday.update(msg)
	case viewCalendar:
		a.calendar, cmd = a.calendar.update(msg)
	case viewAnalytics:
		a.analytics, cmd = a.analytics.update(msg)
	case viewCategories:
		a.categories, cmd = a.categories.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewToday:
		return a.today.formActive
	case viewCalendar:
		return a.calendar.formActive
	case viewCategories:
		return a.categories.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewToday:
		return a.today.refresh()
	case viewYesterday:
		return a.yesterday.refresh()
	case viewCalendar:
		return a.calendar.refresh()
	case viewAnalytics:
		return a.analytics.refresh()
	case viewCategories:
		return a.categories.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	if !a.authenticated {
		return a.login.view()
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewToday:
		content = a.today.view()
	case viewYesterday:
		content = a.yesterday.view()
	case viewCalendar:
		content = a.calendar.view()
	case viewAnalytics:
		content = a.analytics.view()
	case viewCategories:
		content = a.categories.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("timewallet")
	if u := a.stores.Auth.User(); u != nil {
		title += mutedStyle.Render(" · " + u.Username)
	}
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	// Wallet balance in the footer, visible from every tab.
	balance := successStyle.Render(
		fmt.Sprintf(" %s left", formatHours(a.stores.Wallet.RemainingHours())),
	)
	if a.stores.Wallet.RemainingHours() == 0 {
		balance = warningStyle.Render(" budget spent")
	}

	left := footerStyle.Render(helpView)
	right := balance + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		tasks := a.stores.Tasks.Tasks()
		resolve := a.stores.Categories.Lookup

		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("timewallet-export-%s.csv", dateStr))
			if err := export.ToCSV(tasks, resolve, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("timewallet-export-%s.json", dateStr))
			if err := export.ToJSON(tasks, resolve, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
