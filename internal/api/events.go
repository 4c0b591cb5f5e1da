package api

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// ListEvents fetches the events in the half-open range [from, to).
// Events are windowed by the calendar's visible range, never globally
// cached, so every navigation re-fetches with the new window.
func (c *Client) ListEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	q := url.Values{}
	q.Set("from", from.UTC().Format(time.RFC3339))
	q.Set("to", to.UTC().Format(time.RFC3339))
	var out []Event
	if err := c.do(ctx, http.MethodGet, "/events", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateEvent(ctx context.Context, draft EventDraft) (*Event, error) {
	var out Event
	if err := c.do(ctx, http.MethodPost, "/events", nil, draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateEvent(ctx context.Context, id string, patch EventPatch) (*Event, error) {
	var out Event
	if err := c.do(ctx, http.MethodPatch, "/events/"+id, nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/events/"+id, nil, nil, nil)
}
