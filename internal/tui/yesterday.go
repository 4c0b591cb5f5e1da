package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"timewallet/internal/api"
	"timewallet/internal/stores"
)

// yesterdayModel lists yesterday's unfinished tasks so they can be
// pulled forward into today.
type yesterdayModel struct {
	ctx    context.Context
	stores *stores.Set
	width  int
	height int

	tasks  []api.Task
	cursor int
}

func newYesterdayModel(ctx context.Context, set *stores.Set) yesterdayModel {
	return yesterdayModel{ctx: ctx, stores: set}
}

func (y *yesterdayModel) setSize(w, h int) {
	y.width = w
	y.height = h
}

type yesterdayDataMsg struct {
	tasks []api.Task
}

func (y yesterdayModel) refresh() tea.Cmd {
	return func() tea.Msg {
		date := dateString(time.Now().AddDate(0, 0, -1))
		done := false
		y.stores.Tasks.Fetch(y.ctx, date, &done)
		return yesterdayDataMsg{tasks: y.stores.Tasks.Tasks()}
	}
}

func (y yesterdayModel) update(msg tea.Msg) (yesterdayModel, tea.Cmd) {
	switch msg := msg.(type) {
	case yesterdayDataMsg:
		y.tasks = msg.tasks
		if y.cursor >= len(y.tasks) {
			y.cursor = max(0, len(y.tasks)-1)
		}
		return y, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if y.cursor > 0 {
				y.cursor--
			}
		case key.Matches(msg, keys.Down):
			if y.cursor < len(y.tasks)-1 {
				y.cursor++
			}
		case key.Matches(msg, keys.PutBack):
			if len(y.tasks) > 0 {
				id := y.tasks[y.cursor].ID
				return y, y.putBack([]string{id})
			}
		case key.Matches(msg, keys.Toggle):
			if len(y.tasks) > 0 {
				id := y.tasks[y.cursor].ID
				return y, y.markDone(id)
			}
		case key.Matches(msg, keys.Enter):
			if len(y.tasks) > 0 {
				ids := make([]string, len(y.tasks))
				for i, t := range y.tasks {
					ids[i] = t.ID
				}
				return y, y.putBack(ids)
			}
		case key.Matches(msg, keys.Refresh):
			return y, y.refresh()
		case key.Matches(msg, keys.Back):
			y.stores.Tasks.ClearError()
		}
	}
	return y, nil
}

// putBack moves the given tasks to today's date, then refetches so the
// list only shows what is still pending for yesterday.
func (y yesterdayModel) putBack(ids []string) tea.Cmd {
	return func() tea.Msg {
		if err := y.stores.Tasks.ShiftToToday(y.ctx, ids); err != nil {
			return statusMsg{text: userMessage(err), isError: true}
		}
		date := dateString(time.Now().AddDate(0, 0, -1))
		done := false
		y.stores.Tasks.Fetch(y.ctx, date, &done)
		return yesterdayDataMsg{tasks: y.stores.Tasks.Tasks()}
	}
}

// markDone closes a leftover task where it is, on yesterday's date,
// then refetches the pending list so it drops out.
func (y yesterdayModel) markDone(id string) tea.Cmd {
	return func() tea.Msg {
		done := true
		if err := y.stores.Tasks.Update(y.ctx, id, api.TaskPatch{Done: &done}); err != nil {
			return statusMsg{text: userMessage(err), isError: true}
		}
		date := dateString(time.Now().AddDate(0, 0, -1))
		pending := false
		y.stores.Tasks.Fetch(y.ctx, date, &pending)
		return yesterdayDataMsg{tasks: y.stores.Tasks.Tasks()}
	}
}

func (y yesterdayModel) view() string {
	w := y.width - 4
	yesterday := time.Now().AddDate(0, 0, -1)

	var rows []string
	rows = append(rows, titleStyle.Render("Yesterday — "+yesterday.Format("Monday, Jan 2")))
	rows = append(rows, "")

	if msg := y.stores.Tasks.Err(); msg != "" {
		rows = append(rows, bannerStyle.Render(msg+"  (esc to dismiss)"), "")
	}

	if y.stores.Tasks.IsLoading() && len(y.tasks) == 0 {
		rows = append(rows, mutedStyle.Render("Loading tasks..."))
	} else if len(y.tasks) == 0 {
		rows = append(rows, successStyle.Render("Nothing left over from yesterday."))
	} else {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("%d unfinished task(s)", len(y.tasks))))
		rows = append(rows, "")
		for i, task := range y.tasks {
			rows = append(rows, y.renderTask(i, task))
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  p: move to today  enter: move all  space: mark done  r: refresh"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (y yesterdayModel) renderTask(i int, task api.Task) string {
	cursor := "  "
	style := normalItemStyle
	if i == y.cursor {
		cursor = "> "
		style = selectedItemStyle
	}

	cat := y.stores.Categories.Lookup(task.CategoryID)
	dot := lipgloss.NewStyle().Foreground(lipgloss.Color(cat.Color)).Render("●")

	return fmt.Sprintf("%s%s  %s %s",
		cursor,
		style.Render(fmt.Sprintf("%-32s", task.Title)),
		dot,
		mutedStyle.Render(cat.Name),
	)
}
