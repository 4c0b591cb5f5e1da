package tui

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timewallet/internal/api"
	"timewallet/internal/stores"
)

func TestParseClock(t *testing.T) {
	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)

	got, err := parseClock("09:30", day)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Hour())
	assert.Equal(t, 30, got.Minute())
	assert.Equal(t, day.Day(), got.Day())

	_, err = parseClock("9am", day)
	assert.Error(t, err)
	_, err = parseClock("", day)
	assert.Error(t, err)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "1.5h", formatHours(1.5))
	assert.Equal(t, "2.0h", formatMinutes(120))
	assert.Equal(t, "0.5h", formatMinutes(30))
	assert.Equal(t, "2026-08-31", dateString(time.Date(2026, 8, 31, 23, 0, 0, 0, time.Local)))
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, userMessage(nil))

	verr := &stores.ValidationError{Fields: []api.FieldError{{Field: "title", Message: "Title is required"}}}
	assert.Equal(t, "Title is required", userMessage(verr))

	assert.Equal(t, "Session expired, sign in again", userMessage(api.ErrUnauthorized))

	nerr := &api.NetworkError{Err: errors.New("dial tcp: refused")}
	assert.Equal(t, "Network error, check your connection", userMessage(nerr))

	serr := &api.ServerError{Status: 409, Message: "Title already exists"}
	assert.Equal(t, "Title already exists", userMessage(serr))

	assert.Equal(t, "server error 500", userMessage(&api.ServerError{Status: 500}))
}

func TestStartOfWeek(t *testing.T) {
	// A Monday maps to itself.
	mon := time.Date(2026, 8, 31, 15, 0, 0, 0, time.Local) // Monday
	got := startOfWeek(mon)
	assert.Equal(t, time.Monday, got.Weekday())
	assert.Equal(t, 31, got.Day())
	assert.Zero(t, got.Hour())

	// A Sunday maps back to the previous Monday.
	sun := time.Date(2026, 9, 6, 8, 0, 0, 0, time.Local) // Sunday
	got = startOfWeek(sun)
	assert.Equal(t, time.Monday, got.Weekday())
	assert.Equal(t, 31, got.Day())
}
