package api

import (
	"context"
	"net/http"
	"net/url"
)

// WeeklyAnalytics fetches the server-computed snapshot for the week
// containing the given date (YYYY-MM-DD).
func (c *Client) WeeklyAnalytics(ctx context.Context, date string) (*AnalyticsSnapshot, error) {
	q := url.Values{}
	q.Set("date", date)
	var out AnalyticsSnapshot
	if err := c.do(ctx, http.MethodGet, "/aggregation/analytics/weekly", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshWeeklyAnalytics asks the server to recompute its weekly
// aggregates. Callers throttle this to once per calendar day.
func (c *Client) RefreshWeeklyAnalytics(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/aggregation/analytics/weekly/update", nil, nil, nil)
}
