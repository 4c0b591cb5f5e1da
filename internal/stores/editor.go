package stores

import (
	"context"
	"time"

	"timewallet/internal/api"
)

// EditorState is the modal editing-session state machine:
// Closed → Creating → Closed, or Closed → Editing → Closed.
type EditorState int

const (
	EditorClosed EditorState = iota
	EditorCreating
	EditorEditing
)

// Draft holds the fields being edited, with time fields in the user's
// local wall clock. They are converted back to UTC only on submit.
type Draft struct {
	Title      string
	Start      time.Time
	End        time.Time
	AllDay     bool
	Location   string
	Notes      string
	CategoryID string
	Date       string
	Done       bool
}

// Editor is the transient modal state tied to one entity store at a
// time. Submission goes through the store; a failed submit keeps the
// draft so the user can retry — nothing was applied optimistically, so
// there is nothing to roll back.
type Editor struct {
	state    EditorState
	entityID string
	draft    Draft
	loc      *time.Location
}

// NewEditor creates a closed editor converting instants to the given
// location for editing (time.Local in the app).
func NewEditor(loc *time.Location) *Editor {
	if loc == nil {
		loc = time.Local
	}
	return &Editor{loc: loc}
}

func (e *Editor) State() EditorState { return e.state }
func (e *Editor) EntityID() string   { return e.entityID }
func (e *Editor) Draft() Draft       { return e.draft }
func (e *Editor) SetDraft(d Draft)   { e.draft = d }

// OpenCreate moves Closed → Creating with the selected time range
// pre-populated in local wall clock.
func (e *Editor) OpenCreate(start, end time.Time) {
	e.state = EditorCreating
	e.entityID = ""
	e.draft = Draft{
		Start: start.In(e.loc),
		End:   end.In(e.loc),
		Date:  start.In(e.loc).Format("2006-01-02"),
	}
}

// OpenEditEvent moves Closed → Editing with the event's current fields,
// UTC instants converted to local wall clock for editing.
func (e *Editor) OpenEditEvent(ev api.Event) {
	e.state = EditorEditing
	e.entityID = ev.ID
	e.draft = Draft{
		Title:    ev.Title,
		Start:    ev.Start.In(e.loc),
		End:      ev.End.In(e.loc),
		AllDay:   ev.AllDay,
		Location: ev.Location,
		Notes:    ev.Notes,
	}
}

// OpenEditTask moves Closed → Editing with the task's current fields.
func (e *Editor) OpenEditTask(t api.Task) {
	e.state = EditorEditing
	e.entityID = t.ID
	e.draft = Draft{
		Title:      t.Title,
		Start:      t.Start.In(e.loc),
		End:        t.End.In(e.loc),
		Notes:      t.Notes,
		CategoryID: t.CategoryID,
		Date:       t.Date,
		Done:       t.Done,
	}
}

// Cancel discards the draft and returns to Closed without a network
// call.
func (e *Editor) Cancel() {
	e.state = EditorClosed
	e.entityID = ""
	e.draft = Draft{}
}

// SubmitEvent validates the draft and invokes the store's create or
// update, depending on the session state. Success closes the session;
// any failure leaves it open with the draft intact.
func (e *Editor) SubmitEvent(ctx context.Context, store *EventsStore) error {
	draft := api.EventDraft{
		Title:    e.draft.Title,
		Start:    e.draft.Start.UTC(),
		End:      e.draft.End.UTC(),
		AllDay:   e.draft.AllDay,
		Location: e.draft.Location,
		Notes:    e.draft.Notes,
		Source:   api.EventSourceManual,
	}
	if err := ValidateEventDraft(draft); err != nil {
		return err
	}

	var err error
	switch e.state {
	case EditorCreating:
		err = store.Create(ctx, draft)
	case EditorEditing:
		patch := api.EventPatch{
			Title:    &draft.Title,
			Start:    &draft.Start,
			End:      &draft.End,
			AllDay:   &draft.AllDay,
			Location: &draft.Location,
			Notes:    &draft.Notes,
		}
		err = store.Update(ctx, e.entityID, patch)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	e.Cancel()
	return nil
}

// DeleteEvent invokes the store's delete from an editing session and
// closes on success.
func (e *Editor) DeleteEvent(ctx context.Context, store *EventsStore) error {
	if e.state != EditorEditing {
		return nil
	}
	if err := store.Delete(ctx, e.entityID); err != nil {
		return err
	}
	e.Cancel()
	return nil
}

// SubmitTask is the task-store counterpart of SubmitEvent.
func (e *Editor) SubmitTask(ctx context.Context, store *TasksStore) error {
	draft := api.TaskDraft{
		Title:      e.draft.Title,
		CategoryID: e.draft.CategoryID,
		Date:       e.draft.Date,
		Start:      e.draft.Start.UTC(),
		End:        e.draft.End.UTC(),
		Done:       e.draft.Done,
		Notes:      e.draft.Notes,
	}
	if err := ValidateTaskDraft(draft); err != nil {
		return err
	}

	var err error
	switch e.state {
	case EditorCreating:
		err = store.Create(ctx, draft)
	case EditorEditing:
		patch := api.TaskPatch{
			Title:      &draft.Title,
			CategoryID: &draft.CategoryID,
			Date:       &draft.Date,
			Start:      &draft.Start,
			End:        &draft.End,
			Notes:      &draft.Notes,
		}
		err = store.Update(ctx, e.entityID, patch)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	e.Cancel()
	return nil
}

// DeleteTask invokes the store's delete from an editing session and
// closes on success.
func (e *Editor) DeleteTask(ctx context.Context, store *TasksStore) error {
	if e.state != EditorEditing {
		return nil
	}
	if err := store.Delete(ctx, e.entityID); err != nil {
		return err
	}
	e.Cancel()
	return nil
}
