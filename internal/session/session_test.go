package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timewallet/internal/api"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTokenRoundTrip(t *testing.T) {
	s := newTestStore(t)

	token, err := s.Token()
	require.NoError(t, err)
	assert.Empty(t, token, "fresh store is logged out")

	require.NoError(t, s.SetToken("tok-abc"))
	token, err = s.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)

	// Overwrite, not append.
	require.NoError(t, s.SetToken("tok-def"))
	token, err = s.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-def", token)
}

func TestUserRoundTrip(t *testing.T) {
	s := newTestStore(t)

	u, err := s.User()
	require.NoError(t, err)
	assert.Nil(t, u)

	require.NoError(t, s.SetUser(api.User{ID: "u1", Username: "alice", Email: "a@example.com"}))
	u, err = s.User()
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "a@example.com", u.Email)
}

func TestClearRemovesWholeSession(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetToken("tok"))
	require.NoError(t, s.SetUser(api.User{ID: "u1"}))
	require.NoError(t, s.MarkAnalyticsUpdated("2026-08-31"))

	require.NoError(t, s.Clear())

	token, err := s.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	u, err := s.User()
	require.NoError(t, err)
	assert.Nil(t, u)

	last, err := s.LastAnalyticsUpdate()
	require.NoError(t, err)
	assert.Empty(t, last)
}

func TestAnalyticsBookkeeping(t *testing.T) {
	s := newTestStore(t)

	last, err := s.LastAnalyticsUpdate()
	require.NoError(t, err)
	assert.Empty(t, last)

	require.NoError(t, s.MarkAnalyticsUpdated("2026-08-31"))
	last, err = s.LastAnalyticsUpdate()
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31", last)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.SetToken("survives"))
	require.NoError(t, s.Close())

	s2, err := New(path)
	require.NoError(t, err)
	defer s2.Close()

	token, err := s2.Token()
	require.NoError(t, err)
	assert.Equal(t, "survives", token)
}
