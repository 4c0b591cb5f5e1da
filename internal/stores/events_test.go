package stores

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timewallet/internal/api"
)

type fakeEventAPI struct {
	listFn   func(from, to time.Time) ([]api.Event, error)
	createFn func(draft api.EventDraft) (*api.Event, error)
	updateFn func(id string, patch api.EventPatch) (*api.Event, error)
	deleteFn func(id string) error

	listCalls int
}

func (f *fakeEventAPI) ListEvents(_ context.Context, from, to time.Time) ([]api.Event, error) {
	f.listCalls++
	return f.listFn(from, to)
}

func (f *fakeEventAPI) CreateEvent(_ context.Context, draft api.EventDraft) (*api.Event, error) {
	return f.createFn(draft)
}

func (f *fakeEventAPI) UpdateEvent(_ context.Context, id string, patch api.EventPatch) (*api.Event, error) {
	return f.updateFn(id, patch)
}

func (f *fakeEventAPI) DeleteEvent(_ context.Context, id string) error {
	return f.deleteFn(id)
}

func event(id string, start time.Time) api.Event {
	return api.Event{ID: id, Title: "ev-" + id, Start: start, End: start.Add(time.Hour)}
}

func TestEventsFetchSortsChronologically(t *testing.T) {
	base := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	fake := &fakeEventAPI{
		listFn: func(from, to time.Time) ([]api.Event, error) {
			// Server order is not guaranteed.
			return []api.Event{
				event("late", base.Add(48 * time.Hour)),
				event("early", base),
				event("mid", base.Add(24 * time.Hour)),
			}, nil
		},
	}
	s := NewEventsStore(fake, testLogger())

	require.NoError(t, s.Fetch(context.Background(), base, base.AddDate(0, 0, 7)))
	got := s.Events()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"early", "mid", "late"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestEventsNavigationReplacesWindow(t *testing.T) {
	base := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	var gotFrom, gotTo time.Time
	fake := &fakeEventAPI{
		listFn: func(from, to time.Time) ([]api.Event, error) {
			gotFrom, gotTo = from, to
			return []api.Event{event("a", from.Add(time.Hour))}, nil
		},
	}
	s := NewEventsStore(fake, testLogger())

	require.NoError(t, s.Fetch(context.Background(), base, base.AddDate(0, 0, 7)))
	assert.Equal(t, 1, fake.listCalls, "one window, one outbound request")
	assert.Equal(t, base, gotFrom)
	assert.Equal(t, base.AddDate(0, 0, 7), gotTo)

	// Navigating to the next week refetches and replaces wholesale.
	next := base.AddDate(0, 0, 7)
	require.NoError(t, s.Fetch(context.Background(), next, next.AddDate(0, 0, 7)))
	assert.Equal(t, 2, fake.listCalls)
	require.Len(t, s.Events(), 1)
	assert.Equal(t, next.Add(time.Hour), s.Events()[0].Start)
}

func TestEventsFetchForOtherWindowSupersedes(t *testing.T) {
	base := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	next := base.AddDate(0, 0, 7)
	s := NewEventsStore(nil, testLogger())
	fake := &fakeEventAPI{}
	fake.listFn = func(from, to time.Time) ([]api.Event, error) {
		if from.Equal(base) {
			// Mid-flight navigation to the next week supersedes this
			// fetch; its late response is discarded.
			require.NoError(t, s.Fetch(context.Background(), next, next.AddDate(0, 0, 7)))
			return []api.Event{event("stale", base.Add(time.Hour))}, nil
		}
		return []api.Event{event("fresh", from.Add(time.Hour))}, nil
	}
	s.api = fake

	require.NoError(t, s.Fetch(context.Background(), base, next))
	assert.Equal(t, 2, fake.listCalls)
	got := s.Events()
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].ID)
	assert.False(t, s.IsLoading())
}

func TestEventsCreateKeepsOrder(t *testing.T) {
	base := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	created := event("new", base.Add(12*time.Hour))
	fake := &fakeEventAPI{
		listFn: func(time.Time, time.Time) ([]api.Event, error) {
			return []api.Event{event("a", base), event("b", base.Add(24 * time.Hour))}, nil
		},
		createFn: func(api.EventDraft) (*api.Event, error) { return &created, nil },
	}
	s := NewEventsStore(fake, testLogger())
	require.NoError(t, s.Fetch(context.Background(), base, base.AddDate(0, 0, 7)))

	require.NoError(t, s.Create(context.Background(), api.EventDraft{Title: "x", Start: created.Start, End: created.End}))
	got := s.Events()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "new", "b"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestEventsDeleteFailureKeepsCache(t *testing.T) {
	base := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	fake := &fakeEventAPI{
		listFn:   func(time.Time, time.Time) ([]api.Event, error) { return []api.Event{event("a", base)}, nil },
		deleteFn: func(string) error { return &api.ServerError{Status: 500} },
	}
	s := NewEventsStore(fake, testLogger())
	require.NoError(t, s.Fetch(context.Background(), base, base.AddDate(0, 0, 7)))

	require.Error(t, s.Delete(context.Background(), "a"))
	assert.Len(t, s.Events(), 1, "no optimistic removal")
	assert.Equal(t, "Failed to delete event", s.Err())
}
