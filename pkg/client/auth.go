package client

import (
	"context"
	"errors"
	"net/http"

	"library-circulation/internal/domain/apperr"
	"library-circulation/pkg/api"
)

type RegisterRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FullName        string `json:"full_name,omitempty"`
	Role            string `json:"role,omitempty"`
}

func (c *Client) Register(ctx context.Context, in RegisterRequest) (*api.User, error) {
	var out api.User
	if err := c.call(ctx, "register", http.MethodPost, "/auth/register", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateUser is the admin path, e.g. for librarian accounts.
func (c *Client) CreateUser(ctx context.Context, in RegisterRequest) (*api.User, error) {
	var out api.User
	if err := c.call(ctx, "create user", http.MethodPost, "/users", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login starts a session and makes it the client's current one.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	var out api.Session
	in := map[string]string{"username": username, "password": password}
	if err := c.call(ctx, "login", http.MethodPost, "/auth/login", in, &out); err != nil {
		return nil, err
	}
	s := &Session{
		BaseURL:   c.baseURL,
		Token:     out.Token,
		UserID:    out.UserID,
		Username:  out.Username,
		Role:      out.Role,
		ExpiresAt: out.ExpiresAt,
	}
	c.setSession(s)
	return s, nil
}

// Logout revokes the session on the server and forgets it locally. The
// local session is kept only when the server could not be reached.
func (c *Client) Logout(ctx context.Context) error {
	if c.token() == "" {
		return ErrNoSession
	}
	err := c.call(ctx, "logout", http.MethodPost, "/auth/logout", nil, nil)
	if err != nil && errors.Is(err, apperr.ErrTransport) {
		return err
	}
	c.setSession(nil)
	c.mu.Lock()
	c.avail = map[string]Availability{}
	c.mu.Unlock()
	if err != nil && !errors.Is(err, apperr.ErrAuthorization) {
		return err
	}
	return nil
}

func (c *Client) Me(ctx context.Context) (*api.User, error) {
	var out api.User
	if err := c.call(ctx, "me", http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
