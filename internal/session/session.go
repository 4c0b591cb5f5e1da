package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"timewallet/internal/api"
)

const currentVersion = 1

// Fixed storage keys. The token and serialized user make up the
// authenticated session; lastAnalyticsKey records the last calendar date
// on which the weekly analytics refresh ran, enforcing once-per-day.
const (
	tokenKey         = "token"
	userKey          = "user"
	lastAnalyticsKey = "last_analytics_update"
)

// Store is the durable client-side key-value storage backing the
// session: bearer token, serialized user, and bookkeeping dates.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the session database at dbPath and runs
// migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory session store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		const ddl = `
		CREATE TABLE IF NOT EXISTS session (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		`
		if _, err := s.db.Exec(ddl); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get session key %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO session (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// Token returns the stored bearer token, or "" when logged out.
func (s *Store) Token() (string, error) {
	return s.get(tokenKey)
}

func (s *Store) SetToken(token string) error {
	return s.set(tokenKey, token)
}

// User returns the stored user identity, or nil when none is stored.
func (s *Store) User() (*api.User, error) {
	raw, err := s.get(userKey)
	if err != nil || raw == "" {
		return nil, err
	}
	var u api.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode stored user: %w", err)
	}
	return &u, nil
}

func (s *Store) SetUser(u api.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return s.set(userKey, string(data))
}

// Clear removes the whole session in one transaction: token, user, and
// the analytics bookkeeping date.
func (s *Store) Clear() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, key := range []string{tokenKey, userKey, lastAnalyticsKey} {
		if _, err := tx.Exec(`DELETE FROM session WHERE key = ?`, key); err != nil {
			tx.Rollback()
			return fmt.Errorf("clear session key %q: %w", key, err)
		}
	}
	return tx.Commit()
}

// LastAnalyticsUpdate returns the calendar date (YYYY-MM-DD) of the last
// weekly analytics refresh, or "" if it never ran.
func (s *Store) LastAnalyticsUpdate() (string, error) {
	return s.get(lastAnalyticsKey)
}

func (s *Store) MarkAnalyticsUpdated(date string) error {
	return s.set(lastAnalyticsKey, date)
}

// DefaultPath returns ~/.config/timewallet/session.db
func DefaultPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "timewallet", "session.db"), nil
}
