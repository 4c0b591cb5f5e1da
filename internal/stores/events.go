package stores

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"timewallet/internal/api"
)

// EventAPI is the slice of the request client the events store uses.
type EventAPI interface {
	ListEvents(ctx context.Context, from, to time.Time) ([]api.Event, error)
	CreateEvent(ctx context.Context, draft api.EventDraft) (*api.Event, error)
	UpdateEvent(ctx context.Context, id string, patch api.EventPatch) (*api.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// EventsStore caches the calendar events for the currently visible
// window. There is no range-union caching: every navigation replaces the
// cache with the new window's fetch result.
type EventsStore struct {
	mu  sync.Mutex
	api EventAPI
	log *slog.Logger

	events      []api.Event
	loading     bool
	inflight    string
	gen         uint64
	err         string
	lastFetched time.Time
}

func NewEventsStore(a EventAPI, log *slog.Logger) *EventsStore {
	return &EventsStore{api: a, log: log}
}

// Fetch loads the events in [from, to). A duplicate call for the same
// window while one is in flight is a no-op (one outbound request);
// navigating to a different window supersedes the in-flight fetch, whose
// response is discarded on arrival. On success the cache is replaced
// wholesale and kept in chronological order.
func (s *EventsStore) Fetch(ctx context.Context, from, to time.Time) error {
	key := from.UTC().Format(time.RFC3339) + "|" + to.UTC().Format(time.RFC3339)

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

	events, err := s.api.ListEvents(ctx, from, to)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return nil
	}
	s.loading = false
	if err != nil {
		s.log.Error("fetch events", "from", from, "to", to, "error", err)
		s.err = "Failed to load events"
		return err
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	s.events = events
	s.lastFetched = time.Now()
	return nil
}

func (s *EventsStore) Create(ctx context.Context, draft api.EventDraft) error {
	created, err := s.api.CreateEvent(ctx, draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Error("create event", "error", err)
		s.err = "Failed to create event"
		return err
	}
	s.events = append(s.events, *created)
	sort.Slice(s.events, func(i, j int) bool { return s.events[i].Start.Before(s.events[j].Start) })
	s.err = ""
	return nil
}

func (s *EventsStore) Update(ctx context.Context, id string, patch api.EventPatch) error {
	updated, err := s.api.UpdateEvent(ctx, id, patch)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Error("update event", "id", id, "error", err)
		s.err = "Failed to update event"
		return err
	}
	for i := range s.events {
		if s.events[i].ID == updated.ID {
			s.events[i] = *updated
			break
		}
	}
	sort.Slice(s.events, func(i, j int) bool { return s.events[i].Start.Before(s.events[j].Start) })
	s.err = ""
	return nil
}

func (s *EventsStore) Delete(ctx context.Context, id string) error {
	err := s.api.DeleteEvent(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Error("delete event", "id", id, "error", err)
		s.err = "Failed to delete event"
		return err
	}
	kept := s.events[:0]
	for _, e := range s.events {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	s.events = kept
	s.err = ""
	return nil
}

// Events returns a copy of the cached window, chronologically ordered.
func (s *EventsStore) Events() []api.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *EventsStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *EventsStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *EventsStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

func (s *EventsStore) LastFetched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFetched
}
