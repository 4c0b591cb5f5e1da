package stores

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"timewallet/internal/api"
)

// AnalyticsAPI is the slice of the request client the analytics store
// uses.
type AnalyticsAPI interface {
	WeeklyAnalytics(ctx context.Context, date string) (*api.AnalyticsSnapshot, error)
	RefreshWeeklyAnalytics(ctx context.Context) error
}

// AnalyticsBookkeeping records when the daily server-side refresh last
// ran; the session store implements it.
type AnalyticsBookkeeping interface {
	LastAnalyticsUpdate() (string, error)
	MarkAnalyticsUpdated(date string) error
}

// AnalyticsStore mirrors the server-computed weekly snapshots for this
// week and last week. The client never mutates a snapshot; it only
// requests them and derives percentage shares locally.
type AnalyticsStore struct {
	mu  sync.Mutex
	api AnalyticsAPI
	log *slog.Logger

	thisWeek    *api.AnalyticsSnapshot
	lastWeek    *api.AnalyticsSnapshot
	loading     bool
	inflight    string
	gen         uint64
	err         string
	lastFetched time.Time
}

func NewAnalyticsStore(a AnalyticsAPI, log *slog.Logger) *AnalyticsStore {
	return &AnalyticsStore{api: a, log: log}
}

// Fetch loads the snapshots for the week containing now and the week
// seven days before it. A duplicate call for the same anchor date while
// one is in flight is a no-op; a fetch anchored on a different date
// supersedes the in-flight one, whose response is discarded on arrival.
func (s *AnalyticsStore) Fetch(ctx context.Context, now time.Time) error {
	key := now.Format("2006-01-02")

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

	thisWeek, err := s.api.WeeklyAnalytics(ctx, now.Format("2006-01-02"))
	var lastWeek *api.AnalyticsSnapshot
	if err == nil {
		lastWeek, err = s.api.WeeklyAnalytics(ctx, now.AddDate(0, 0, -7).Format("2006-01-02"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return nil
	}
	s.loading = false
	if err != nil {
		s.log.Error("fetch weekly analytics", "error", err)
		s.err = "Failed to load analytics"
		return err
	}
	s.thisWeek = thisWeek
	s.lastWeek = lastWeek
	s.lastFetched = time.Now()
	return nil
}

// RefreshDaily asks the server to recompute its weekly aggregates, at
// most once per calendar day. It runs from the authentication bootstrap
// path, never as a mutation side effect, and failures are logged rather
// than surfaced.
func (s *AnalyticsStore) RefreshDaily(ctx context.Context, book AnalyticsBookkeeping, now time.Time) {
	today := now.Format("2006-01-02")
	last, err := book.LastAnalyticsUpdate()
	if err != nil {
		s.log.Warn("read last analytics update", "error", err)
		return
	}
	if last == today {
		return
	}
	if err := s.api.RefreshWeeklyAnalytics(ctx); err != nil {
		s.log.Warn("weekly analytics refresh failed", "error", err)
		return
	}
	if err := book.MarkAnalyticsUpdated(today); err != nil {
		s.log.Warn("mark analytics updated", "error", err)
	}
}

func (s *AnalyticsStore) ThisWeek() *api.AnalyticsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.thisWeek
}

func (s *AnalyticsStore) LastWeek() *api.AnalyticsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastWeek
}

// CategoryShare is a locally derived percentage slice of a week's
// category breakdown.
type CategoryShare struct {
	CategoryID string
	Name       string
	Minutes    int
	Percent    int
}

// TopCategoryShares derives the top-n category shares of a snapshot,
// sorted by minutes. An empty or zero-total snapshot yields none.
func TopCategoryShares(snap *api.AnalyticsSnapshot, n int) []CategoryShare {
	if snap == nil || snap.TotalMinutes == 0 || len(snap.ByCategory) == 0 {
		return nil
	}
	byMinutes := make([]api.CategoryMinutes, len(snap.ByCategory))
	copy(byMinutes, snap.ByCategory)
	sort.Slice(byMinutes, func(i, j int) bool { return byMinutes[i].Minutes > byMinutes[j].Minutes })
	if n < len(byMinutes) {
		byMinutes = byMinutes[:n]
	}

	shares := make([]CategoryShare, 0, len(byMinutes))
	for _, c := range byMinutes {
		shares = append(shares, CategoryShare{
			CategoryID: c.CategoryID,
			Name:       c.Name,
			Minutes:    c.Minutes,
			Percent:    int(float64(c.Minutes)/float64(snap.TotalMinutes)*100 + 0.5),
		})
	}
	return shares
}

func (s *AnalyticsStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *AnalyticsStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *AnalyticsStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}
