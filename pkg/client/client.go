// Package client is a typed client for the circulation API. It mirrors the
// borrow state machine for checks that need no round trip, and never
// retries on its own.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"library-circulation/pkg/id"
)

const (
	headerRequestID = "X-Request-Id"
	headerRequestAt = "X-Request-At"
)

var ErrNoSession = errors.New("not logged in")

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

func WithClock(now func() time.Time) Option { return func(c *Client) { c.now = now } }

// WithSession resumes a stored session.
func WithSession(s *Session) Option { return func(c *Client) { c.session = s } }

type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time

	mu      sync.Mutex
	session *Session
	avail   map[string]Availability
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
		avail:   map[string]Availability{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Session returns the current session, or nil.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) setSession(s *Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.Token
}

// call sends one request. in is JSON-encoded unless it is a *multipartBody;
// out, when non-nil, receives the decoded 2xx body.
func (c *Client) call(ctx context.Context, op, method, path string, in, out any) error {
	var (
		body        io.Reader
		contentType string
	)
	switch v := in.(type) {
	case nil:
	case *multipartBody:
		body, contentType = bytes.NewReader(v.data), v.contentType
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body, contentType = bytes.NewReader(b), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if method != http.MethodGet {
		req.Header.Set(headerRequestID, id.NewID32())
		req.Header.Set(headerRequestAt, c.now().UTC().Format(time.RFC3339))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &TransportError{Op: op, Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Retryable: true, Err: err}
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return &TransportError{Op: op, Status: resp.StatusCode, Retryable: retryableStatus(resp.StatusCode),
			Err: errors.New(strings.TrimSpace(string(raw)))}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		return apiError(resp.StatusCode, eb)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
