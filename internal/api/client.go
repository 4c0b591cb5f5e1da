package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const requestTimeout = 10 * time.Second

// Session is the slice of the durable session store the client needs:
// reading the bearer token on every call and tearing everything down on
// a 401.
type Session interface {
	Token() (string, error)
	Clear() error
}

// Client is the single configured request client every store goes
// through. It attaches the bearer token when one is stored and handles
// 401 centrally: clear the session first, then navigate, then surface
// ErrUnauthorized to the caller. It never retries.
type Client struct {
	baseURL        string
	http           *http.Client
	session        Session
	log            *slog.Logger
	onUnauthorized func()
}

func NewClient(baseURL string, session Session, log *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		session: session,
		log:     log,
	}
}

// SetUnauthorizedHook registers the navigation step run after a 401 has
// cleared the session. The hook runs once per 401 response.
func (c *Client) SetUnauthorizedHook(fn func()) {
	c.onUnauthorized = fn
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// A missing token is not an error; some endpoints are public.
	token, err := c.session.Token()
	if err != nil {
		c.log.Warn("read token", "error", err)
	} else if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", "method", method, "path", path, "error", err)
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Clear-then-redirect, never the other way around.
		if err := c.session.Clear(); err != nil {
			c.log.Error("clear session after 401", "error", err)
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		c.log.Info("session invalidated by server", "path", path)
		return ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.readServerError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorBody is the loose error envelope the server uses. Some endpoints
// say "message", older ones say "error"; validation failures add the
// structural errors array.
type errorBody struct {
	Message string       `json:"message"`
	Error   string       `json:"error"`
	Errors  []FieldError `json:"errors"`
}

func (c *Client) readServerError(resp *http.Response) error {
	serr := &ServerError{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return serr
	}
	var eb errorBody
	if json.Unmarshal(data, &eb) == nil {
		serr.Message = eb.Message
		if serr.Message == "" {
			serr.Message = eb.Error
		}
		serr.Fields = eb.Errors
	}
	return serr
}
