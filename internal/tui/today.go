package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"timewallet/internal/api"
	"timewallet/internal/stores"
)

type todayModel struct {
	ctx    context.Context
	stores *stores.Set
	width  int
	height int

	tasks  []api.Task
	cursor int

	formActive bool
	form       *huh.Form
	formErr    string
	submitting bool
	editor     *stores.Editor

	// Form field pointers (survive value copies)
	formTitle    *string
	formCategory *string
	formStart    *string
	formEnd      *string
	formNotes    *string
}

func newTodayModel(ctx context.Context, set *stores.Set) todayModel {
	title, category, start, end, notes := "", "", "", "", ""
	return todayModel{
		ctx:          ctx,
		stores:       set,
		editor:       stores.NewEditor(time.Local),
		formTitle:    &title,
		formCategory: &category,
		formStart:    &start,
		formEnd:      &end,
		formNotes:    &notes,
	}
}

func (t *todayModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

type todayDataMsg struct {
	tasks []api.Task
}

type taskFormErrMsg struct {
	err error
}

// refresh pulls today's tasks and the wallet aggregate. The wallet
// fetch rides along because both views of "today" should agree.
func (t todayModel) refresh() tea.Cmd {
	return func() tea.Msg {
		date := dateString(time.Now())
		t.stores.Tasks.Fetch(t.ctx, date, nil)
		t.stores.Wallet.FetchSpentHours(t.ctx)
		return todayDataMsg{tasks: t.stores.Tasks.Tasks()}
	}
}

func (t todayModel) update(msg tea.Msg) (todayModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case todayDataMsg:
		t.tasks = msg.tasks
		if t.cursor >= len(t.tasks) {
			t.cursor = max(0, len(t.tasks)-1)
		}
		return t, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if t.cursor > 0 {
				t.cursor--
			}
		case key.Matches(msg, keys.Down):
			if t.cursor < len(t.tasks)-1 {
				t.cursor++
			}
		case key.Matches(msg, keys.Toggle):
			if len(t.tasks) > 0 {
				id := t.tasks[t.cursor].ID
				return t, func() tea.Msg {
					t.stores.Tasks.ToggleDone(t.ctx, id)
					return todayDataMsg{tasks: t.stores.Tasks.Tasks()}
				}
			}
		case key.Matches(msg, keys.New):
			now := time.Now()
			t.editor.OpenCreate(now, now.Add(time.Hour))
			return t.showForm()
		case key.Matches(msg, keys.Edit):
			if len(t.tasks) > 0 {
				t.editor.OpenEditTask(t.tasks[t.cursor])
				return t.showForm()
			}
		case key.Matches(msg, keys.Delete):
			if len(t.tasks) > 0 {
				t.editor.OpenEditTask(t.tasks[t.cursor])
				return t, func() tea.Msg {
					t.editor.DeleteTask(t.ctx, t.stores.Tasks)
					return todayDataMsg{tasks: t.stores.Tasks.Tasks()}
				}
			}
		case key.Matches(msg, keys.Refresh):
			return t, t.refresh()
		case key.Matches(msg, keys.Back):
			t.stores.Tasks.ClearError()
			t.stores.Wallet.ClearError()
		}
	}
	return t, nil
}

func (t todayModel) showForm() (todayModel, tea.Cmd) {
	draft := t.editor.Draft()
	*t.formTitle = draft.Title
	*t.formCategory = draft.CategoryID
	*t.formStart = formatClock(draft.Start)
	*t.formEnd = formatClock(draft.End)
	*t.formNotes = draft.Notes
	t.formErr = ""

	categories := t.stores.Categories.Categories()
	catOptions := make([]huh.Option[string], 0, len(categories)+1)
	catOptions = append(catOptions, huh.NewOption("(none)", ""))
	for _, c := range categories {
		catOptions = append(catOptions, huh.NewOption(c.Name, c.ID))
	}

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(t.formTitle),
			huh.NewSelect[string]().Title("Category").Options(catOptions...).Value(t.formCategory),
			huh.NewInput().Title("Start (HH:MM)").Value(t.formStart),
			huh.NewInput().Title("End (HH:MM)").Value(t.formEnd),
			huh.NewInput().Title("Notes").Value(t.formNotes),
		),
	).WithShowHelp(true).WithShowErrors(true)

	t.formActive = true
	t.submitting = false
	return t, t.form.Init()
}

func (t todayModel) updateForm(msg tea.Msg) (todayModel, tea.Cmd) {
	switch msg := msg.(type) {
	case taskFormErrMsg:
		// Failure keeps the modal open with the draft intact.
		t.formErr = userMessage(msg.err)
		return t.showForm()

	case todayDataMsg:
		t.formActive = false
		t.form = nil
		t.submitting = false
		t.tasks = msg.tasks
		return t, nil
	}

	// One submission per form completion: once the request is in flight,
	// nothing but its outcome moves the modal.
	if t.submitting {
		return t, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		// Cancel discards the draft with no network call.
		t.editor.Cancel()
		t.formActive = false
		t.form = nil
		return t, nil
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.submitting = true
		return t, t.submit()
	}

	return t, cmd
}

func (t todayModel) submit() tea.Cmd {
	draft := t.editor.Draft()
	draft.Title = *t.formTitle
	draft.CategoryID = *t.formCategory
	draft.Notes = *t.formNotes
	if draft.Date == "" {
		draft.Date = dateString(time.Now())
	}

	day, err := time.ParseInLocation("2006-01-02", draft.Date, time.Local)
	if err != nil {
		day = time.Now()
	}
	start, err := parseClock(*t.formStart, day)
	if err != nil {
		return func() tea.Msg { return taskFormErrMsg{err: err} }
	}
	end, err := parseClock(*t.formEnd, day)
	if err != nil {
		return func() tea.Msg { return taskFormErrMsg{err: err} }
	}
	draft.Start = start
	draft.End = end
	t.editor.SetDraft(draft)

	return func() tea.Msg {
		if err := t.editor.SubmitTask(t.ctx, t.stores.Tasks); err != nil {
			return taskFormErrMsg{err: err}
		}
		return todayDataMsg{tasks: t.stores.Tasks.Tasks()}
	}
}

func (t todayModel) view() string {
	if t.formActive && t.form != nil {
		title := titleStyle.Render("New Task")
		if t.editor.State() == stores.EditorEditing {
			title = titleStyle.Render("Edit Task")
		}
		rows := []string{title, "", t.form.View()}
		if t.formErr != "" {
			rows = append(rows, "", errorStyle.Render(t.formErr))
		}
		return panelStyle.Width(t.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	w := t.width - 4
	var rows []string
	rows = append(rows, titleStyle.Render("Today — "+time.Now().Format("Monday, Jan 2")))
	rows = append(rows, "")
	rows = append(rows, t.renderWallet())
	rows = append(rows, "")

	if banner := t.renderBanner(); banner != "" {
		rows = append(rows, banner, "")
	}

	if t.stores.Tasks.IsLoading() && len(t.tasks) == 0 {
		rows = append(rows, mutedStyle.Render("Loading tasks..."))
	} else if len(t.tasks) == 0 {
		rows = append(rows, mutedStyle.Render("No tasks today. Press n to add one."))
	} else {
		for i, task := range t.tasks {
			rows = append(rows, t.renderTask(i, task))
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete  space: toggle  r: refresh"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (t todayModel) renderWallet() string {
	spent := t.stores.Wallet.SpentHours()
	budget := t.stores.Wallet.BudgetHours()
	remaining := t.stores.Wallet.RemainingHours()

	remainingStr := successStyle.Render(formatHours(remaining))
	if remaining < 2 {
		remainingStr = warningStyle.Render(formatHours(remaining))
	}
	return fmt.Sprintf("  Budget %s   Spent %s   Remaining %s",
		highlightStyle.Render(formatHours(budget)),
		normalItemStyle.Render(formatHours(spent)),
		remainingStr,
	)
}

func (t todayModel) renderTask(i int, task api.Task) string {
	cursor := "  "
	style := normalItemStyle
	if i == t.cursor {
		cursor = "> "
		style = selectedItemStyle
	}

	check := "[ ]"
	if task.Done {
		check = "[x]"
		if i != t.cursor {
			style = doneItemStyle
		}
	}

	cat := t.stores.Categories.Lookup(task.CategoryID)
	dot := lipgloss.NewStyle().Foreground(lipgloss.Color(cat.Color)).Render("●")
	window := fmt.Sprintf("%s–%s", formatClock(task.Start), formatClock(task.End))

	return fmt.Sprintf("%s%s %s %s  %s %s",
		cursor,
		check,
		style.Render(fmt.Sprintf("%-28s", task.Title)),
		mutedStyle.Render(window),
		dot,
		mutedStyle.Render(cat.Name),
	)
}

func (t todayModel) renderBanner() string {
	if msg := t.stores.Tasks.Err(); msg != "" {
		return bannerStyle.Render(msg + "  (esc to dismiss)")
	}
	if msg := t.stores.Wallet.Err(); msg != "" {
		return bannerStyle.Render(msg + "  (esc to dismiss)")
	}
	return ""
}
