package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"library-circulation/internal/domain/actor"
	"library-circulation/internal/domain/apperr"
	"library-circulation/internal/usecase/auth"
)

// SessionCookie carries the token for browser clients.
const SessionCookie = "token"

const (
	actorKey  = "actor"
	claimsKey = "claims"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (actor.Actor, *auth.Claims, error)
}

// Auth resolves the session from the Authorization header, falling back to
// the session cookie, and stores the actor on the echo context.
func Auth(a Authenticator, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				if ck, err := c.Cookie(SessionCookie); err == nil {
					token = ck.Value
				}
			}
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing Authorization header or token cookie"})
			}

			who, claims, err := a.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, apperr.ErrAuthorization) {
					return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
				}
				log.Error("authenticate", zap.Error(err))
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "session store unavailable"})
			}
			c.Set(actorKey, who)
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

func bearerToken(h string) string {
	parts := strings.SplitN(strings.TrimSpace(h), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// ActorFrom returns the authenticated actor, if any.
func ActorFrom(c echo.Context) (actor.Actor, bool) {
	a, ok := c.Get(actorKey).(actor.Actor)
	return a, ok
}

func ClaimsFrom(c echo.Context) *auth.Claims {
	cl, _ := c.Get(claimsKey).(*auth.Claims)
	return cl
}

// WithActor is used by tests and internal callers that authenticate
// some other way.
func WithActor(c echo.Context, a actor.Actor) { c.Set(actorKey, a) }
