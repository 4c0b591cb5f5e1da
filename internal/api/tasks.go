package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

type tasksResponse struct {
	Tasks []Task `json:"tasks"`
}

// ListTasks fetches the tasks for a calendar date, optionally filtered
// by completion state.
func (c *Client) ListTasks(ctx context.Context, date string, done *bool) ([]Task, error) {
	q := url.Values{}
	q.Set("date", date)
	if done != nil {
		q.Set("done", strconv.FormatBool(*done))
	}
	var out tasksResponse
	if err := c.do(ctx, http.MethodGet, "/tasks", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// TodayAggregate fetches the server-computed "today" slice. The server,
// not the client, sums task durations into spentHours.
func (c *Client) Today(ctx context.Context) (*TodayAggregate, error) {
	var out TodayAggregate
	if err := c.do(ctx, http.MethodGet, "/tasks/today", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTask(ctx context.Context, draft TaskDraft) (*Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodPost, "/tasks", nil, draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTask patches the given fields and returns the server's full
// representation, which is authoritative for every field.
func (c *Client) UpdateTask(ctx context.Context, id string, patch TaskPatch) (*Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodPatch, "/tasks/"+id, nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+id, nil, nil, nil)
}
