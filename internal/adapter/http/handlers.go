package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is a dependency the health check probes, e.g. the database or
// Redis.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type Handler struct {
	now    func() time.Time
	checks map[string]Pinger
}

// NewHandler builds the health handler. Every named check must answer
// within a second for the service to report ok.
func NewHandler(checks map[string]Pinger) *Handler {
	return &Handler{now: time.Now, checks: checks}
}

type healthResp struct {
	Status string            `json:"status"`
	Time   string            `json:"time"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *Handler) Health(c echo.Context) error {
	resp := healthResp{Status: "ok"}
	code := http.StatusOK
	if len(h.checks) > 0 {
		resp.Checks = make(map[string]string, len(h.checks))
		names := make([]string, 0, len(h.checks))
		for name := range h.checks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second)
			err := h.checks[name].Ping(ctx)
			cancel()
			if err != nil {
				resp.Checks[name] = "down"
				resp.Status = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
	}
	resp.Time = h.now().UTC().Format(time.RFC3339Nano)
	return c.JSON(code, resp)
}
