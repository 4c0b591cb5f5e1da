package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timewallet/internal/api"
)

type fakeAuthAPI struct {
	loginFn    func(username, password string) (*api.LoginResponse, error)
	registerFn func(req api.RegisterRequest) (*api.User, error)
	validateFn func() error

	registerCalls int
}

func (f *fakeAuthAPI) Login(_ context.Context, username, password string) (*api.LoginResponse, error) {
	return f.loginFn(username, password)
}

func (f *fakeAuthAPI) Register(_ context.Context, req api.RegisterRequest) (*api.User, error) {
	f.registerCalls++
	return f.registerFn(req)
}

func (f *fakeAuthAPI) Validate(context.Context) error {
	return f.validateFn()
}

// memSession is an in-memory SessionStorage for auth tests.
type memSession struct {
	token string
	user  *api.User
}

func (m *memSession) Token() (string, error) { return m.token, nil }
func (m *memSession) SetToken(token string) error {
	m.token = token
	return nil
}
func (m *memSession) User() (*api.User, error) { return m.user, nil }
func (m *memSession) SetUser(u api.User) error {
	m.user = &u
	return nil
}
func (m *memSession) Clear() error {
	m.token = ""
	m.user = nil
	return nil
}

func validRegistration() api.RegisterRequest {
	return api.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "longenough",
		Name:     "Alice",
	}
}

func TestLoginPersistsSession(t *testing.T) {
	fake := &fakeAuthAPI{
		loginFn: func(username, password string) (*api.LoginResponse, error) {
			return &api.LoginResponse{
				Token: "tok-1",
				User:  api.User{ID: "u1", Username: username},
			}, nil
		},
	}
	sess := &memSession{}
	s := NewAuthStore(fake, sess, testLogger())

	require.NoError(t, s.Login(context.Background(), "alice", "pw"))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "alice", s.User().Username)
	assert.Equal(t, "tok-1", sess.token)
	require.NotNil(t, sess.user)
	assert.Equal(t, "u1", sess.user.ID)
}

func TestLoginFailureSurfacesServerMessage(t *testing.T) {
	fake := &fakeAuthAPI{
		loginFn: func(string, string) (*api.LoginResponse, error) {
			return nil, &api.ServerError{Status: 403, Message: "Invalid credentials"}
		},
	}
	s := NewAuthStore(fake, &memSession{}, testLogger())

	require.Error(t, s.Login(context.Background(), "alice", "wrong"))
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, "Invalid credentials", s.Err())
}

func TestRegisterValidationPreemptsNetwork(t *testing.T) {
	fake := &fakeAuthAPI{
		registerFn: func(api.RegisterRequest) (*api.User, error) {
			t.Fatal("invalid registration must not reach the network")
			return nil, nil
		},
	}
	s := NewAuthStore(fake, &memSession{}, testLogger())

	req := validRegistration()
	req.Password = "short"
	req.Email = "not-an-email"

	err := s.Register(context.Background(), req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, fake.registerCalls)

	fields := s.FieldErrors()
	byField := map[string]string{}
	for _, f := range fields {
		byField[f.Field] = f.Message
	}
	assert.Contains(t, byField, "email")
	assert.Contains(t, byField, "password")
}

func TestRegisterStructuralFieldErrorsPreferred(t *testing.T) {
	fake := &fakeAuthAPI{
		registerFn: func(api.RegisterRequest) (*api.User, error) {
			return nil, &api.ServerError{
				Status:  400,
				Message: "something about the username maybe",
				Fields:  []api.FieldError{{Field: "email", Message: "Email already taken"}},
			}
		},
	}
	s := NewAuthStore(fake, &memSession{}, testLogger())

	require.Error(t, s.Register(context.Background(), validRegistration()))
	fields := s.FieldErrors()
	require.Len(t, fields, 1)
	// The structural array wins even though the prose mentions another
	// field.
	assert.Equal(t, "email", fields[0].Field)
	assert.Equal(t, "Email already taken", s.Err())
}

func TestRegisterProseFallbackGuessesField(t *testing.T) {
	fake := &fakeAuthAPI{
		registerFn: func(api.RegisterRequest) (*api.User, error) {
			return nil, &api.ServerError{Status: 400, Message: "Username is already in use"}
		},
	}
	s := NewAuthStore(fake, &memSession{}, testLogger())

	require.Error(t, s.Register(context.Background(), validRegistration()))
	fields := s.FieldErrors()
	require.Len(t, fields, 1)
	assert.Equal(t, "username", fields[0].Field)
	assert.Equal(t, "Username is already in use", s.Err())
}

func TestRegisterUnmappableProse(t *testing.T) {
	fake := &fakeAuthAPI{
		registerFn: func(api.RegisterRequest) (*api.User, error) {
			return nil, &api.ServerError{Status: 400, Message: "Quota exceeded"}
		},
	}
	s := NewAuthStore(fake, &memSession{}, testLogger())

	require.Error(t, s.Register(context.Background(), validRegistration()))
	assert.Equal(t, "Quota exceeded", s.Err())
	assert.Empty(t, s.FieldErrors())
}

func TestBootstrapRestoresValidSession(t *testing.T) {
	fake := &fakeAuthAPI{validateFn: func() error { return nil }}
	sess := &memSession{token: "tok", user: &api.User{ID: "u1", Username: "alice"}}
	s := NewAuthStore(fake, sess, testLogger())

	ok, err := s.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "alice", s.User().Username)
}

func TestBootstrapWithoutToken(t *testing.T) {
	fake := &fakeAuthAPI{validateFn: func() error {
		t.Fatal("no token, no validate call")
		return nil
	}}
	s := NewAuthStore(fake, &memSession{}, testLogger())

	ok, err := s.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBootstrapExpiredToken(t *testing.T) {
	fake := &fakeAuthAPI{validateFn: func() error { return api.ErrUnauthorized }}
	sess := &memSession{token: "stale"}
	s := NewAuthStore(fake, sess, testLogger())

	ok, err := s.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, s.IsAuthenticated())
}

func TestLogoutClearsEverything(t *testing.T) {
	fake := &fakeAuthAPI{
		loginFn: func(string, string) (*api.LoginResponse, error) {
			return &api.LoginResponse{Token: "tok", User: api.User{Username: "alice"}}, nil
		},
	}
	sess := &memSession{}
	s := NewAuthStore(fake, sess, testLogger())
	require.NoError(t, s.Login(context.Background(), "alice", "pw"))

	require.NoError(t, s.Logout())
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
	assert.Empty(t, sess.token)
	assert.Nil(t, sess.user)
}

func TestInvalidateDropsMemoryState(t *testing.T) {
	fake := &fakeAuthAPI{
		loginFn: func(string, string) (*api.LoginResponse, error) {
			return &api.LoginResponse{Token: "tok", User: api.User{Username: "alice"}}, nil
		},
	}
	s := NewAuthStore(fake, &memSession{}, testLogger())
	require.NoError(t, s.Login(context.Background(), "alice", "pw"))

	s.Invalidate()
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
}
