package tui

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timewallet/internal/api"
	"timewallet/internal/stores"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubTaskAPI struct {
	listFn   func(date string, done *bool) ([]api.Task, error)
	updateFn func(id string, patch api.TaskPatch) (*api.Task, error)

	createCalls int
	updateCalls int
}

func (s *stubTaskAPI) ListTasks(_ context.Context, date string, done *bool) ([]api.Task, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(date, done)
}

func (s *stubTaskAPI) CreateTask(_ context.Context, draft api.TaskDraft) (*api.Task, error) {
	s.createCalls++
	return &api.Task{ID: "created", Title: draft.Title, Date: draft.Date, Start: draft.Start, End: draft.End}, nil
}

func (s *stubTaskAPI) UpdateTask(_ context.Context, id string, patch api.TaskPatch) (*api.Task, error) {
	s.updateCalls++
	return s.updateFn(id, patch)
}

func (s *stubTaskAPI) DeleteTask(_ context.Context, _ string) error { return nil }

type stubCategoryAPI struct {
	createCalls int
}

func (s *stubCategoryAPI) ListCategories(_ context.Context) ([]api.Category, error) {
	return nil, nil
}

func (s *stubCategoryAPI) CreateCategory(_ context.Context, draft api.CategoryDraft) (*api.Category, error) {
	s.createCalls++
	return &api.Category{ID: "created", Name: draft.Name, Color: draft.Color}, nil
}

func (s *stubCategoryAPI) UpdateCategory(_ context.Context, id string, draft api.CategoryDraft) (*api.Category, error) {
	return &api.Category{ID: id, Name: draft.Name, Color: draft.Color}, nil
}

func (s *stubCategoryAPI) DeleteCategory(_ context.Context, _ string) error { return nil }

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestTodayFormSubmitsOnce(t *testing.T) {
	fake := &stubTaskAPI{}
	set := &stores.Set{
		Tasks:      stores.NewTasksStore(fake, testLogger()),
		Categories: stores.NewCategoriesStore(&stubCategoryAPI{}, testLogger()),
	}

	m := newTodayModel(context.Background(), set)
	start := time.Date(2026, 8, 31, 9, 0, 0, 0, time.Local)
	m.editor.OpenCreate(start, start.Add(time.Hour))
	m, _ = m.showForm()
	*m.formTitle = "Review notes"

	// Completing the form fires exactly one create.
	m.form.State = huh.StateCompleted
	m, cmd := m.update(keyRune('x'))
	require.NotNil(t, cmd)
	assert.True(t, m.submitting)

	// Keystrokes while the request is in flight must not re-fire it.
	m2, cmd2 := m.update(keyRune('x'))
	assert.Nil(t, cmd2)
	m2, cmd3 := m2.update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd3)

	msg := cmd()
	require.IsType(t, todayDataMsg{}, msg)
	assert.Equal(t, 1, fake.createCalls)

	// The outcome closes the modal and re-arms it.
	m2, _ = m2.update(msg)
	assert.False(t, m2.formActive)
	assert.False(t, m2.submitting)
}

func TestCategoriesFormSubmitsOnce(t *testing.T) {
	fake := &stubCategoryAPI{}
	set := &stores.Set{
		Categories: stores.NewCategoriesStore(fake, testLogger()),
	}

	m := newCategoriesModel(context.Background(), set)
	*m.formName = "Deep Work"
	*m.formColor = categoryColors[0]
	m, _ = m.showForm()

	m.form.State = huh.StateCompleted
	m, cmd := m.update(keyRune('x'))
	require.NotNil(t, cmd)

	_, cmd2 := m.update(keyRune('x'))
	assert.Nil(t, cmd2)

	msg := cmd()
	require.IsType(t, categoriesDataMsg{}, msg)
	assert.Equal(t, 1, fake.createCalls)
}

func TestYesterdayMarkDone(t *testing.T) {
	pending := api.Task{
		ID:    "1",
		Title: "Leftover",
		Date:  dateString(time.Now().AddDate(0, 0, -1)),
	}
	var sentPatch api.TaskPatch
	fake := &stubTaskAPI{
		updateFn: func(id string, patch api.TaskPatch) (*api.Task, error) {
			sentPatch = patch
			out := pending
			out.Done = true
			return &out, nil
		},
	}
	fetched := false
	fake.listFn = func(string, *bool) ([]api.Task, error) {
		if !fetched {
			fetched = true
			return []api.Task{pending}, nil
		}
		// After the task is closed it no longer matches done=false.
		return nil, nil
	}
	set := &stores.Set{
		Tasks:      stores.NewTasksStore(fake, testLogger()),
		Categories: stores.NewCategoriesStore(&stubCategoryAPI{}, testLogger()),
	}

	m := newYesterdayModel(context.Background(), set)
	m, _ = m.update(m.refresh()())
	require.Len(t, m.tasks, 1)

	m, cmd := m.update(tea.KeyMsg{Type: tea.KeySpace})
	require.NotNil(t, cmd)
	msg := cmd()

	// The task is closed in place: done flips, the window stays put.
	require.NotNil(t, sentPatch.Done)
	assert.True(t, *sentPatch.Done)
	assert.Nil(t, sentPatch.Start)
	assert.Nil(t, sentPatch.End)
	assert.Nil(t, sentPatch.Date)

	data, ok := msg.(yesterdayDataMsg)
	require.True(t, ok)
	m, _ = m.update(data)
	assert.Empty(t, m.tasks, "closed task drops out of the pending list")
}
