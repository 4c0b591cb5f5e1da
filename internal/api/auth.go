package api

import (
	"context"
	"net/http"
)

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	body := map[string]string{"username": username, "password": password}
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type RegisterRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

type registerResponse struct {
	User User `json:"user"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var out registerResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register/user", nil, req, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Validate checks the stored token against the server. A nil return
// means the token is still good; an invalid token comes back as
// ErrUnauthorized after the usual session teardown.
func (c *Client) Validate(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/auth/validate", nil, nil, nil)
}
