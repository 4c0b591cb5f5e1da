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

// calendarModel shows one week of events at a time. Navigating to
// another week refetches that window; there is no range-union caching.
type calendarModel struct {
	ctx    context.Context
	stores *stores.Set
	width  int
	height int

	weekStart time.Time // Monday 00:00 local
	events    []api.Event
	cursor    int

	formActive bool
	form       *huh.Form
	formErr    string
	submitting bool
	editor     *stores.Editor

	// Form field pointers (survive value copies)
	formTitle    *string
	formDate     *string
	formStart    *string
	formEnd      *string
	formAllDay   *bool
	formLocation *string
	formNotes    *string
}

func newCalendarModel(ctx context.Context, set *stores.Set) calendarModel {
	title, date, start, end, location, notes := "", "", "", "", "", ""
	allDay := false
	return calendarModel{
		ctx:          ctx,
		stores:       set,
		weekStart:    startOfWeek(time.Now()),
		editor:       stores.NewEditor(time.Local),
		formTitle:    &title,
		formDate:     &date,
		formStart:    &start,
		formEnd:      &end,
		formAllDay:   &allDay,
		formLocation: &location,
		formNotes:    &notes,
	}
}

// startOfWeek returns the Monday 00:00 of t's week in local time.
func startOfWeek(t time.Time) time.Time {
	t = t.Local()
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
	return day.AddDate(0, 0, -offset)
}

func (c *calendarModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

type calendarDataMsg struct {
	events []api.Event
}

type eventFormErrMsg struct {
	err error
}

func (c calendarModel) refresh() tea.Cmd {
	from := c.weekStart
	to := c.weekStart.AddDate(0, 0, 7)
	return func() tea.Msg {
		c.stores.Events.Fetch(c.ctx, from.UTC(), to.UTC())
		return calendarDataMsg{events: c.stores.Events.Events()}
	}
}

func (c calendarModel) update(msg tea.Msg) (calendarModel, tea.Cmd) {
	if c.formActive && c.form != nil {
		return c.updateForm(msg)
	}

	switch msg := msg.(type) {
	case calendarDataMsg:
		c.events = msg.events
		if c.cursor >= len(c.events) {
			c.cursor = max(0, len(c.events)-1)
		}
		return c, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if c.cursor > 0 {
				c.cursor--
			}
		case key.Matches(msg, keys.Down):
			if c.cursor < len(c.events)-1 {
				c.cursor++
			}
		case key.Matches(msg, keys.Left):
			c.weekStart = c.weekStart.AddDate(0, 0, -7)
			c.cursor = 0
			return c, c.refresh()
		case key.Matches(msg, keys.Right):
			c.weekStart = c.weekStart.AddDate(0, 0, 7)
			c.cursor = 0
			return c, c.refresh()
		case key.Matches(msg, keys.New):
			start := c.defaultStart()
			c.editor.OpenCreate(start, start.Add(time.Hour))
			return c.showForm()
		case key.Matches(msg, keys.Edit):
			if len(c.events) > 0 {
				c.editor.OpenEditEvent(c.events[c.cursor])
				return c.showForm()
			}
		case key.Matches(msg, keys.Delete):
			if len(c.events) > 0 {
				c.editor.OpenEditEvent(c.events[c.cursor])
				return c, func() tea.Msg {
					c.editor.DeleteEvent(c.ctx, c.stores.Events)
					return calendarDataMsg{events: c.stores.Events.Events()}
				}
			}
		case key.Matches(msg, keys.Refresh):
			return c, c.refresh()
		case key.Matches(msg, keys.Back):
			c.stores.Events.ClearError()
		}
	}
	return c, nil
}

// defaultStart picks a starting instant inside the visible week: now if
// the week contains it, otherwise the week's Monday morning.
func (c calendarModel) defaultStart() time.Time {
	now := time.Now()
	if !now.Before(c.weekStart) && now.Before(c.weekStart.AddDate(0, 0, 7)) {
		return now
	}
	return c.weekStart.Add(9 * time.Hour)
}

func (c calendarModel) showForm() (calendarModel, tea.Cmd) {
	draft := c.editor.Draft()
	*c.formTitle = draft.Title
	*c.formDate = dateString(draft.Start)
	*c.formStart = formatClock(draft.Start)
	*c.formEnd = formatClock(draft.End)
	*c.formAllDay = draft.AllDay
	*c.formLocation = draft.Location
	*c.formNotes = draft.Notes
	c.formErr = ""

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(c.formTitle),
			huh.NewInput().Title("Date (YYYY-MM-DD)").Value(c.formDate),
			huh.NewInput().Title("Start (HH:MM)").Value(c.formStart),
			huh.NewInput().Title("End (HH:MM)").Value(c.formEnd),
			huh.NewConfirm().Title("All day").Value(c.formAllDay),
			huh.NewInput().Title("Location").Value(c.formLocation),
			huh.NewInput().Title("Notes").Value(c.formNotes),
		),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	c.submitting = false
	return c, c.form.Init()
}

func (c calendarModel) updateForm(msg tea.Msg) (calendarModel, tea.Cmd) {
	switch msg := msg.(type) {
	case eventFormErrMsg:
		// Failure keeps the modal open with the draft intact.
		c.formErr = userMessage(msg.err)
		return c.showForm()

	case calendarDataMsg:
		c.formActive = false
		c.form = nil
		c.submitting = false
		c.events = msg.events
		return c, nil
	}

	// One submission per form completion.
	if c.submitting {
		return c, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		c.editor.Cancel()
		c.formActive = false
		c.form = nil
		return c, nil
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}

	if c.form.State == huh.StateCompleted {
		c.submitting = true
		return c, c.submit()
	}

	return c, cmd
}

func (c calendarModel) submit() tea.Cmd {
	draft := c.editor.Draft()
	draft.Title = *c.formTitle
	draft.AllDay = *c.formAllDay
	draft.Location = *c.formLocation
	draft.Notes = *c.formNotes

	day, err := time.ParseInLocation("2006-01-02", *c.formDate, time.Local)
	if err != nil {
		dateErr := fmt.Errorf("invalid date %q, want YYYY-MM-DD", *c.formDate)
		return func() tea.Msg { return eventFormErrMsg{err: dateErr} }
	}
	start, err := parseClock(*c.formStart, day)
	if err != nil {
		return func() tea.Msg { return eventFormErrMsg{err: err} }
	}
	end, err := parseClock(*c.formEnd, day)
	if err != nil {
		return func() tea.Msg { return eventFormErrMsg{err: err} }
	}
	draft.Start = start
	draft.End = end
	c.editor.SetDraft(draft)

	return func() tea.Msg {
		if err := c.editor.SubmitEvent(c.ctx, c.stores.Events); err != nil {
			return eventFormErrMsg{err: err}
		}
		return calendarDataMsg{events: c.stores.Events.Events()}
	}
}

func (c calendarModel) view() string {
	if c.formActive && c.form != nil {
		title := titleStyle.Render("New Event")
		if c.editor.State() == stores.EditorEditing {
			title = titleStyle.Render("Edit Event")
		}
		rows := []string{title, "", c.form.View()}
		if c.formErr != "" {
			rows = append(rows, "", errorStyle.Render(c.formErr))
		}
		return panelStyle.Width(c.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	w := c.width - 4
	weekEnd := c.weekStart.AddDate(0, 0, 6)

	var rows []string
	rows = append(rows, titleStyle.Render(fmt.Sprintf("Week of %s – %s",
		c.weekStart.Format("Jan 2"), weekEnd.Format("Jan 2, 2006"))))
	rows = append(rows, "")

	if msg := c.stores.Events.Err(); msg != "" {
		rows = append(rows, bannerStyle.Render(msg+"  (esc to dismiss)"), "")
	}

	if c.stores.Events.IsLoading() && len(c.events) == 0 {
		rows = append(rows, mutedStyle.Render("Loading events..."))
	} else if len(c.events) == 0 {
		rows = append(rows, mutedStyle.Render("No events this week. Press n to add one."))
	} else {
		lastDay := ""
		idx := 0
		for _, ev := range c.events {
			day := dateString(ev.Start.Local())
			if day != lastDay {
				if lastDay != "" {
					rows = append(rows, "")
				}
				rows = append(rows, highlightStyle.Render(ev.Start.Local().Format("Monday, Jan 2")))
				lastDay = day
			}
			rows = append(rows, c.renderEvent(idx, ev))
			idx++
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  ←/→: week  n: new  e: edit  d: delete  r: refresh"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (c calendarModel) renderEvent(i int, ev api.Event) string {
	cursor := "  "
	style := normalItemStyle
	if i == c.cursor {
		cursor = "> "
		style = selectedItemStyle
	}

	window := "all day"
	if !ev.AllDay {
		window = fmt.Sprintf("%s–%s", formatClock(ev.Start), formatClock(ev.End))
	}

	line := fmt.Sprintf("%s%s  %s", cursor, mutedStyle.Render(fmt.Sprintf("%-13s", window)), style.Render(ev.Title))
	if ev.Location != "" {
		line += mutedStyle.Render("  @ " + ev.Location)
	}
	if ev.Source == api.EventSourceICS {
		line += mutedStyle.Render("  [ics]")
	}
	return line
}
