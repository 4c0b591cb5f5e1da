package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"timewallet/internal/api"
	"timewallet/internal/stores"
)

// categoryColors is the preset palette offered in the category form.
var categoryColors = []string{
	"#2D967C", "#7AA2F7", "#E74C3C", "#F39C12",
	"#2ECC71", "#9B59B6", "#E91E63", "#00BCD4",
}

type categoriesModel struct {
	ctx    context.Context
	stores *stores.Set
	width  int
	height int

	cursor int

	formActive bool
	form       *huh.Form
	formErr    string
	submitting bool
	editingID  string

	// Form field pointers (survive value copies)
	formName  *string
	formColor *string
}

func newCategoriesModel(ctx context.Context, set *stores.Set) categoriesModel {
	name, color := "", ""
	return categoriesModel{
		ctx:       ctx,
		stores:    set,
		formName:  &name,
		formColor: &color,
	}
}

func (m *categoriesModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type categoriesDataMsg struct{}

type categoryFormErrMsg struct {
	err error
}

func (m categoriesModel) refresh() tea.Cmd {
	return func() tea.Msg {
		m.stores.Categories.Fetch(m.ctx)
		return categoriesDataMsg{}
	}
}

func (m categoriesModel) update(msg tea.Msg) (categoriesModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	categories := m.stores.Categories.Categories()

	switch msg := msg.(type) {
	case categoriesDataMsg:
		if m.cursor >= len(categories) {
			m.cursor = max(0, len(categories)-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(categories)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.New):
			m.editingID = ""
			*m.formName = ""
			*m.formColor = categoryColors[0]
			return m.showForm()
		case key.Matches(msg, keys.Edit):
			if len(categories) > 0 {
				cat := categories[m.cursor]
				m.editingID = cat.ID
				*m.formName = cat.Name
				*m.formColor = cat.Color
				return m.showForm()
			}
		case key.Matches(msg, keys.Delete):
			if len(categories) > 0 {
				id := categories[m.cursor].ID
				// Tasks pointing at the deleted category degrade to the
				// unknown-category fallback; nothing cascades.
				return m, func() tea.Msg {
					if err := m.stores.Categories.Delete(m.ctx, id); err != nil {
						return statusMsg{text: userMessage(err), isError: true}
					}
					return categoriesDataMsg{}
				}
			}
		case key.Matches(msg, keys.Refresh):
			return m, m.refresh()
		case key.Matches(msg, keys.Back):
			m.stores.Categories.ClearError()
		}
	}
	return m, nil
}

func (m categoriesModel) showForm() (categoriesModel, tea.Cmd) {
	m.formErr = ""

	colorOptions := make([]huh.Option[string], 0, len(categoryColors)+1)
	inPalette := false
	for _, c := range categoryColors {
		if c == *m.formColor {
			inPalette = true
		}
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render("● " + c)
		colorOptions = append(colorOptions, huh.NewOption(swatch, c))
	}
	if !inPalette && *m.formColor != "" {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(*m.formColor)).Render("● " + *m.formColor)
		colorOptions = append(colorOptions, huh.NewOption(swatch, *m.formColor))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(m.formName),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(m.formColor),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	m.submitting = false
	return m, m.form.Init()
}

func (m categoriesModel) updateForm(msg tea.Msg) (categoriesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case categoryFormErrMsg:
		// Failure keeps the form open with the draft intact.
		m.formErr = userMessage(msg.err)
		return m.showForm()

	case categoriesDataMsg:
		m.formActive = false
		m.form = nil
		m.submitting = false
		return m, nil
	}

	// One submission per form completion.
	if m.submitting {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		m.formActive = false
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.submitting = true
		return m, m.submit()
	}

	return m, cmd
}

func (m categoriesModel) submit() tea.Cmd {
	draft := api.CategoryDraft{Name: *m.formName, Color: *m.formColor}
	id := m.editingID
	return func() tea.Msg {
		var err error
		if id == "" {
			err = m.stores.Categories.Create(m.ctx, draft)
		} else {
			err = m.stores.Categories.Update(m.ctx, id, draft)
		}
		if err != nil {
			return categoryFormErrMsg{err: err}
		}
		return categoriesDataMsg{}
	}
}

func (m categoriesModel) view() string {
	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Category")
		if m.editingID != "" {
			title = titleStyle.Render("Edit Category")
		}
		rows := []string{title, "", m.form.View()}
		if m.formErr != "" {
			rows = append(rows, "", errorStyle.Render(m.formErr))
		}
		return panelStyle.Width(m.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	w := m.width - 4
	categories := m.stores.Categories.Categories()

	var rows []string
	rows = append(rows, titleStyle.Render("Categories"))
	rows = append(rows, "")

	if msg := m.stores.Categories.Err(); msg != "" {
		rows = append(rows, bannerStyle.Render(msg+"  (esc to dismiss)"), "")
	}

	if m.stores.Categories.IsLoading() && len(categories) == 0 {
		rows = append(rows, mutedStyle.Render("Loading categories..."))
	} else if len(categories) == 0 {
		rows = append(rows, mutedStyle.Render("No categories yet. Press n to add one."))
	} else {
		for i, cat := range categories {
			cursor := "  "
			style := normalItemStyle
			if i == m.cursor {
				cursor = "> "
				style = selectedItemStyle
			}
			dot := lipgloss.NewStyle().Foreground(lipgloss.Color(cat.Color)).Render("●")
			rows = append(rows, fmt.Sprintf("%s%s %s  %s",
				cursor, dot, style.Render(fmt.Sprintf("%-24s", cat.Name)), mutedStyle.Render(cat.Color),
			))
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete  r: refresh"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
