package stores

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"timewallet/internal/api"
)

// BudgetHours is the fixed daily time budget. It is a client-side
// constant, not server-configurable.
const BudgetHours = 15.0

// WalletAPI is the slice of the request client the wallet view uses.
type WalletAPI interface {
	Today(ctx context.Context) (*api.TodayAggregate, error)
}

// WalletStore is the derived wallet view: the server-computed spent
// hours for today against the fixed budget. Remaining hours are always
// computed on read, never stored, so they cannot go stale.
type WalletStore struct {
	mu  sync.Mutex
	api WalletAPI
	log *slog.Logger

	spentHours  float64
	loading     bool
	err         string
	lastUpdated time.Time
}

func NewWalletStore(a WalletAPI, log *slog.Logger) *WalletStore {
	return &WalletStore{api: a, log: log}
}

// FetchSpentHours pulls the authoritative "today" aggregate. There is
// only one "today", so a call while a fetch is in flight is always a
// duplicate and is dropped. A value that fails the local sanity check
// (negative, NaN, infinite) is clamped to zero with a warning; it is
// not a store-level error.
func (s *WalletStore) FetchSpentHours(ctx context.Context) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	agg, err := s.api.Today(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.log.Error("fetch spent hours", "error", err)
		s.err = "Failed to fetch wallet data"
		return err
	}

	hours := agg.SpentHours
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		s.log.Warn("invalid spentHours from server, treating as zero", "spentHours", hours)
		hours = 0
	}
	s.spentHours = hours
	s.lastUpdated = time.Now()
	return nil
}

// Refresh is the invalidation entry point wired to the tasks store.
func (s *WalletStore) Refresh(ctx context.Context) {
	if err := s.FetchSpentHours(ctx); err != nil {
		s.log.Warn("wallet refresh after task change failed", "error", err)
	}
}

func (s *WalletStore) SpentHours() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spentHours
}

func (s *WalletStore) BudgetHours() float64 { return BudgetHours }

// RemainingHours is computed on every read as max(0, budget − spent).
func (s *WalletStore) RemainingHours() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return math.Max(0, BudgetHours-s.spentHours)
}

func (s *WalletStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *WalletStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *WalletStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

func (s *WalletStore) LastUpdated() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUpdated
}
