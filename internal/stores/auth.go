package stores

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"timewallet/internal/api"
)

// AuthAPI is the slice of the request client the auth store uses.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*api.LoginResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.User, error)
	Validate(ctx context.Context) error
}

// SessionStorage is the durable side of the authenticated session.
type SessionStorage interface {
	Token() (string, error)
	SetToken(token string) error
	User() (*api.User, error)
	SetUser(u api.User) error
	Clear() error
}

// AuthStore owns the authenticated-session state: current user, bearer
// token persistence, and the login/register/validate flows.
type AuthStore struct {
	mu      sync.Mutex
	api     AuthAPI
	session SessionStorage
	log     *slog.Logger

	user          *api.User
	authenticated bool
	loading       bool
	err           string
	fieldErrs     []api.FieldError
}

func NewAuthStore(a AuthAPI, session SessionStorage, log *slog.Logger) *AuthStore {
	return &AuthStore{api: a, session: session, log: log}
}

// Login authenticates and persists the session. The token is written
// before the user so a crash between the two leaves a recoverable state.
func (s *AuthStore) Login(ctx context.Context, username, password string) error {
	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.api.Login(ctx, username, password)
	if err != nil {
		s.setError(loginErrorMessage(err), nil)
		return err
	}

	if err := s.session.SetToken(resp.Token); err != nil {
		s.log.Error("persist token", "error", err)
	}
	if err := s.session.SetUser(resp.User); err != nil {
		s.log.Error("persist user", "error", err)
	}

	s.mu.Lock()
	u := resp.User
	s.user = &u
	s.authenticated = true
	s.err = ""
	s.fieldErrs = nil
	s.mu.Unlock()
	return nil
}

// Register creates an account. Client-side schema validation runs first
// and never reaches the network on failure.
func (s *AuthStore) Register(ctx context.Context, req api.RegisterRequest) error {
	if err := validateRegistration(req); err != nil {
		var verr *ValidationError
		errors.As(err, &verr)
		s.setError(verr.First(), verr.Fields)
		return err
	}

	s.setLoading(true)
	defer s.setLoading(false)

	if _, err := s.api.Register(ctx, req); err != nil {
		msg, fields := registrationErrorDetail(err)
		s.setError(msg, fields)
		return err
	}

	s.mu.Lock()
	s.err = ""
	s.fieldErrs = nil
	s.mu.Unlock()
	return nil
}

// Bootstrap restores a persisted session at startup: validate the
// stored token against the server, then load the stored user. A missing
// or invalid token leaves the store unauthenticated.
func (s *AuthStore) Bootstrap(ctx context.Context) (bool, error) {
	token, err := s.session.Token()
	if err != nil {
		return false, err
	}
	if token == "" {
		return false, nil
	}

	if err := s.api.Validate(ctx); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			// The client already tore the session down.
			return false, nil
		}
		return false, err
	}

	user, err := s.session.User()
	if err != nil || user == nil {
		// Token is valid but the stored identity is unusable; start over.
		if cerr := s.session.Clear(); cerr != nil {
			s.log.Error("clear session", "error", cerr)
		}
		return false, err
	}

	s.mu.Lock()
	s.user = user
	s.authenticated = true
	s.mu.Unlock()
	return true, nil
}

// Logout discards the session locally. There is no server call.
func (s *AuthStore) Logout() error {
	err := s.session.Clear()
	s.mu.Lock()
	s.user = nil
	s.authenticated = false
	s.err = ""
	s.fieldErrs = nil
	s.mu.Unlock()
	return err
}

// Invalidate drops the in-memory auth state after a 401 has cleared the
// durable session.
func (s *AuthStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.authenticated = false
}

func (s *AuthStore) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

func (s *AuthStore) User() *api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *AuthStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *AuthStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// FieldErrors returns the per-field messages of the last failed
// login/register attempt.
func (s *AuthStore) FieldErrors() []api.FieldError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fieldErrs
}

func (s *AuthStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
	s.fieldErrs = nil
}

func (s *AuthStore) setLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
}

func (s *AuthStore) setError(msg string, fields []api.FieldError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
	s.fieldErrs = fields
}

func loginErrorMessage(err error) string {
	var serr *api.ServerError
	if errors.As(err, &serr) && serr.Message != "" {
		return serr.Message
	}
	return "Login failed"
}

// registrationErrorDetail maps a failed registration to field-level
// messages. The structural errors array is the contract; the
// string-matching fallback below is a degraded-compatibility path for
// older servers that only return prose.
func registrationErrorDetail(err error) (string, []api.FieldError) {
	var serr *api.ServerError
	if !errors.As(err, &serr) {
		return "Registration failed", nil
	}

	if len(serr.Fields) > 0 {
		return serr.Fields[0].Message, serr.Fields
	}

	if f := guessFieldFromMessage(serr.Message); f != nil {
		return serr.Message, []api.FieldError{*f}
	}
	if serr.Message != "" {
		return serr.Message, nil
	}
	return "Registration failed", nil
}

// guessFieldFromMessage is the legacy fallback: infer which field a
// prose error refers to. Kept only for servers predating the structural
// contract.
func guessFieldFromMessage(msg string) *api.FieldError {
	lower := strings.ToLower(msg)
	for _, field := range []string{"username", "email", "password", "name"} {
		if strings.Contains(lower, field) {
			return &api.FieldError{Field: field, Message: msg}
		}
	}
	return nil
}
