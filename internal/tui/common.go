package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"timewallet/internal/api"
	"timewallet/internal/stores"
)

// viewState represents the currently active view.
type viewState int

const (
	viewToday viewState = iota
	viewYesterday
	viewCalendar
	viewAnalytics
	viewCategories
)

var viewNames = []string{"Today", "Yesterday", "Calendar", "Analytics", "Categories"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

// unauthorizedMsg is the navigation event after a 401: the session is
// already cleared by the time it arrives.
type unauthorizedMsg struct{}

// UnauthorizedMsg is how the request client's 401 hook reaches the
// running program from outside the package.
func UnauthorizedMsg() tea.Msg { return unauthorizedMsg{} }

type bootstrapMsg struct {
	authenticated bool
}

type loggedInMsg struct{}

type loggedOutMsg struct {
	reason string
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatHours(h float64) string {
	return fmt.Sprintf("%.1fh", h)
}

func formatMinutes(min int) string {
	h := float64(min) / 60
	return fmt.Sprintf("%.1fh", h)
}

func formatClock(t time.Time) string {
	return t.Local().Format("15:04")
}

// parseClock parses an HH:MM wall-clock string onto the given date in
// the local zone.
func parseClock(value string, date time.Time) (time.Time, error) {
	clock, err := time.Parse("15:04", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, want HH:MM", value)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), 0, 0, time.Local), nil
}

func dateString(t time.Time) string {
	return t.Format("2006-01-02")
}

// userMessage maps an error to the single line shown next to a form.
func userMessage(err error) string {
	if err == nil {
		return ""
	}
	var vErr *stores.ValidationError
	if errors.As(err, &vErr) {
		return vErr.First()
	}
	if errors.Is(err, api.ErrUnauthorized) {
		return "Session expired, sign in again"
	}
	var nErr *api.NetworkError
	if errors.As(err, &nErr) {
		return "Network error, check your connection"
	}
	var sErr *api.ServerError
	if errors.As(err, &sErr) && sErr.Message != "" {
		return sErr.Message
	}
	return err.Error()
}
