package api

import "time"

// Wire shapes for the server-owned entities. The client holds cache
// copies of these; the server is authoritative for every field.

type Task struct {
	ID         string    `json:"_id"`
	Title      string    `json:"title"`
	CategoryID string    `json:"categoryId"`
	Date       string    `json:"date"` // YYYY-MM-DD
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Done       bool      `json:"done"`
	Notes      string    `json:"notes,omitempty"`
}

// TaskDraft is a task without a server-assigned identity.
type TaskDraft struct {
	Title      string    `json:"title"`
	CategoryID string    `json:"categoryId"`
	Date       string    `json:"date"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Done       bool      `json:"done"`
	Notes      string    `json:"notes,omitempty"`
}

// TaskPatch carries only the fields being changed. Nil means untouched.
type TaskPatch struct {
	Title      *string    `json:"title,omitempty"`
	CategoryID *string    `json:"categoryId,omitempty"`
	Date       *string    `json:"date,omitempty"`
	Start      *time.Time `json:"start,omitempty"`
	End        *time.Time `json:"end,omitempty"`
	Done       *bool      `json:"done,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
}

const (
	EventSourceManual = "manual"
	EventSourceICS    = "ics"
)

type Event struct {
	ID       string    `json:"_id"`
	Title    string    `json:"title"`
	Start    time.Time `json:"start"` // UTC
	End      time.Time `json:"end"`   // UTC
	AllDay   bool      `json:"allDay,omitempty"`
	Location string    `json:"location,omitempty"`
	Notes    string    `json:"notes,omitempty"`
	Source   string    `json:"source,omitempty"` // manual or ics
}

type EventDraft struct {
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	AllDay   bool      `json:"allDay,omitempty"`
	Location string    `json:"location,omitempty"`
	Notes    string    `json:"notes,omitempty"`
	Source   string    `json:"source,omitempty"`
}

type EventPatch struct {
	Title    *string    `json:"title,omitempty"`
	Start    *time.Time `json:"start,omitempty"`
	End      *time.Time `json:"end,omitempty"`
	AllDay   *bool      `json:"allDay,omitempty"`
	Location *string    `json:"location,omitempty"`
	Notes    *string    `json:"notes,omitempty"`
}

type Category struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type CategoryDraft struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TodayAggregate is the server-computed "today" slice: total spent hours
// plus, optionally, the tasks it was summed from.
type TodayAggregate struct {
	SpentHours float64 `json:"spentHours"`
	Tasks      []Task  `json:"tasks,omitempty"`
}

// AnalyticsSnapshot is the read-only weekly aggregate. The client never
// mutates it; percentage shares are computed locally.
type AnalyticsSnapshot struct {
	WeekStart             string             `json:"weekStart"`
	TotalMinutes          int                `json:"totalMinutes"`
	Daily                 []DailyBreakdown   `json:"daily"`
	ByCategory            []CategoryMinutes  `json:"byCategory"`
	FocusRatio            FocusRatio         `json:"focusRatio"`
	Streak                int                `json:"streak"`
	AverageProductiveHours float64           `json:"averageProductiveHours"`
	TotalRestMinutes      int                `json:"totalRestMinutes"`
}

type DailyBreakdown struct {
	Date              string            `json:"date"`
	SpentMin          int               `json:"spentMin"`
	TaskMinutes       int               `json:"taskMinutes"`
	EventMinutes      int               `json:"eventMinutes"`
	ProductiveMinutes int               `json:"productiveMinutes"`
	ByCategory        []CategoryMinutes `json:"byCategory,omitempty"`
}

type CategoryMinutes struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	Minutes    int    `json:"minutes"`
}

type FocusRatio struct {
	ActiveMin int `json:"activeMin"`
	RestMin   int `json:"restMin"`
}
