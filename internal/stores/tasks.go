package stores

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"timewallet/internal/api"
)

// TaskAPI is the slice of the request client the tasks store uses.
type TaskAPI interface {
	ListTasks(ctx context.Context, date string, done *bool) ([]api.Task, error)
	CreateTask(ctx context.Context, draft api.TaskDraft) (*api.Task, error)
	UpdateTask(ctx context.Context, id string, patch api.TaskPatch) (*api.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// TasksStore caches the server-owned task list for one fetched date.
// Mutations are never optimistic: the cache changes only after the
// server confirms, so a failure needs no rollback. Successful mutations
// that touch the done flag or the date/time window fire the wallet
// invalidation hook, because the server-computed spent-hours figure
// depends on exactly those fields.
type TasksStore struct {
	mu  sync.Mutex
	api TaskAPI
	log *slog.Logger

	tasks       []api.Task
	loading     bool
	inflight    string
	gen         uint64
	err         string
	lastFetched time.Time

	// One-directional dependency: wallet depends on tasks, never the
	// other way around.
	onSpentChanged func(context.Context)
}

func NewTasksStore(a TaskAPI, log *slog.Logger) *TasksStore {
	return &TasksStore{api: a, log: log}
}

// SetInvalidationHook wires the wallet refresh that follows any task
// mutation affecting the "today" aggregate.
func (s *TasksStore) SetInvalidationHook(fn func(context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSpentChanged = fn
}

// Fetch loads the tasks for a date, optionally filtered by completion.
// A duplicate call while the same fetch is in flight is a no-op (one
// outbound request); a fetch for a different date or filter supersedes
// the in-flight one, whose response is discarded on arrival. On success
// the cache is replaced wholesale; on failure the prior cache stays
// intact.
func (s *TasksStore) Fetch(ctx context.Context, date string, done *bool) error {
	key := taskFetchKey(date, done)

	s.mu.Lock()
	if s.loading && s.inflight == key {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.inflight = key
	s.err = ""
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	tasks, err := s.api.ListTasks(ctx, date, done)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// Superseded by a newer fetch; never let a stale response
		// overwrite newer state.
		return nil
	}
	s.loading = false
	if err != nil {
		s.log.Error("fetch tasks", "date", date, "error", err)
		s.err = "Failed to load tasks"
		return err
	}
	s.tasks = tasks
	s.lastFetched = time.Now()
	return nil
}

func taskFetchKey(date string, done *bool) string {
	if done == nil {
		return date
	}
	return date + "|" + strconv.FormatBool(*done)
}

// Create posts a draft and appends the server-assigned entity on
// success. There is no optimistic insert.
func (s *TasksStore) Create(ctx context.Context, draft api.TaskDraft) error {
	created, err := s.api.CreateTask(ctx, draft)

	s.mu.Lock()
	if err != nil {
		s.log.Error("create task", "error", err)
		s.err = "Failed to create task"
		s.mu.Unlock()
		return err
	}
	s.tasks = append(s.tasks, *created)
	s.err = ""
	hook := s.onSpentChanged
	s.mu.Unlock()

	// A new task carries a date and a time window, both wallet inputs.
	if hook != nil {
		hook(ctx)
	}
	return nil
}

// Update patches the given fields and replaces the cached entity with
// the server's full returned representation.
func (s *TasksStore) Update(ctx context.Context, id string, patch api.TaskPatch) error {
	updated, err := s.api.UpdateTask(ctx, id, patch)

	s.mu.Lock()
	if err != nil {
		s.log.Error("update task", "id", id, "error", err)
		s.err = "Failed to update task"
		s.mu.Unlock()
		return err
	}
	s.replaceLocked(*updated)
	s.err = ""
	hook := s.onSpentChanged
	s.mu.Unlock()

	if hook != nil && patchTouchesWallet(patch) {
		hook(ctx)
	}
	return nil
}

func (s *TasksStore) Delete(ctx context.Context, id string) error {
	err := s.api.DeleteTask(ctx, id)

	s.mu.Lock()
	if err != nil {
		s.log.Error("delete task", "id", id, "error", err)
		s.err = "Failed to delete task"
		s.mu.Unlock()
		return err
	}
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	s.err = ""
	hook := s.onSpentChanged
	s.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}
	return nil
}

// ToggleDone reads the current done flag from the cache and sends the
// inverse. Unknown ids are a no-op.
func (s *TasksStore) ToggleDone(ctx context.Context, id string) error {
	s.mu.Lock()
	var current *api.Task
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			current = &s.tasks[i]
			break
		}
	}
	if current == nil {
		s.mu.Unlock()
		return nil
	}
	next := !current.Done
	s.mu.Unlock()

	return s.Update(ctx, id, api.TaskPatch{Done: &next})
}

// ShiftToToday bulk-moves the given tasks back into today ("put back").
// Each task keeps its wall-clock window, rebased onto today's calendar
// date, and is reopened (done=false) so the server counts it toward
// today's spent hours. Tasks are patched individually; the first failure
// stops the sweep and leaves the remainder untouched. Ids not in the
// cache are skipped.
func (s *TasksStore) ShiftToToday(ctx context.Context, ids []string) error {
	now := time.Now()
	for _, id := range ids {
		s.mu.Lock()
		var current *api.Task
		for i := range s.tasks {
			if s.tasks[i].ID == id {
				t := s.tasks[i]
				current = &t
				break
			}
		}
		s.mu.Unlock()
		if current == nil {
			continue
		}

		start := rebaseOnDay(current.Start, now)
		end := rebaseOnDay(current.End, now)
		done := false
		patch := api.TaskPatch{Start: &start, End: &end, Done: &done}
		if err := s.Update(ctx, id, patch); err != nil {
			return err
		}
	}
	return nil
}

// rebaseOnDay keeps an instant's local wall-clock time but moves it onto
// day's calendar date, returned as UTC for the wire.
func rebaseOnDay(t, day time.Time) time.Time {
	lt := t.Local()
	ld := day.Local()
	return time.Date(ld.Year(), ld.Month(), ld.Day(), lt.Hour(), lt.Minute(), lt.Second(), lt.Nanosecond(), time.Local).UTC()
}

func (s *TasksStore) replaceLocked(updated api.Task) {
	for i := range s.tasks {
		if s.tasks[i].ID == updated.ID {
			s.tasks[i] = updated
			return
		}
	}
}

func patchTouchesWallet(p api.TaskPatch) bool {
	return p.Done != nil || p.Date != nil || p.Start != nil || p.End != nil
}

// Tasks returns a copy of the cached task list.
func (s *TasksStore) Tasks() []api.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *TasksStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the user-visible error banner text, or "" when clear.
func (s *TasksStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *TasksStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

func (s *TasksStore) LastFetched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFetched
}
