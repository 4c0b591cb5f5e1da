package stores

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timewallet/internal/api"
)

type fakeWalletAPI struct {
	agg   api.TodayAggregate
	err   error
	calls int
}

func (f *fakeWalletAPI) Today(context.Context) (*api.TodayAggregate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	agg := f.agg
	return &agg, nil
}

func TestWalletRemainingNeverNegative(t *testing.T) {
	fake := &fakeWalletAPI{}
	s := NewWalletStore(fake, testLogger())

	for _, spent := range []float64{0, 0.5, 7.25, BudgetHours, BudgetHours + 1, 40} {
		fake.agg = api.TodayAggregate{SpentHours: spent}
		require.NoError(t, s.FetchSpentHours(context.Background()))

		remaining := s.RemainingHours()
		assert.GreaterOrEqual(t, remaining, 0.0, "spent=%v", spent)
		assert.InDelta(t, math.Max(0, BudgetHours-spent), remaining, 1e-9, "spent=%v", spent)
	}
}

func TestWalletClampsInvalidSpentHours(t *testing.T) {
	fake := &fakeWalletAPI{}
	s := NewWalletStore(fake, testLogger())

	for _, bad := range []float64{-3, math.NaN(), math.Inf(1), math.Inf(-1)} {
		fake.agg = api.TodayAggregate{SpentHours: bad}
		require.NoError(t, s.FetchSpentHours(context.Background()))

		// Data-level weirdness is warned about and degraded, never an
		// error banner.
		assert.Zero(t, s.SpentHours())
		assert.Equal(t, BudgetHours, s.RemainingHours())
		assert.Empty(t, s.Err())
	}
}

func TestWalletFetchFailureKeepsLastValue(t *testing.T) {
	fake := &fakeWalletAPI{agg: api.TodayAggregate{SpentHours: 4}}
	s := NewWalletStore(fake, testLogger())
	require.NoError(t, s.FetchSpentHours(context.Background()))
	assert.Equal(t, 4.0, s.SpentHours())

	fake.err = &api.ServerError{Status: 500}
	require.Error(t, s.FetchSpentHours(context.Background()))
	assert.Equal(t, "Failed to fetch wallet data", s.Err())
	assert.Equal(t, 4.0, s.SpentHours(), "stale value beats no value")
}

func TestWalletRefreshSwallowsErrors(t *testing.T) {
	fake := &fakeWalletAPI{err: &api.ServerError{Status: 503}}
	s := NewWalletStore(fake, testLogger())

	// Refresh is the invalidation hook path; it must not panic or
	// propagate.
	s.Refresh(context.Background())
	assert.Equal(t, 1, fake.calls)
}

func TestWalletBudgetIsFixed(t *testing.T) {
	s := NewWalletStore(&fakeWalletAPI{}, testLogger())
	assert.Equal(t, 15.0, s.BudgetHours())
}
