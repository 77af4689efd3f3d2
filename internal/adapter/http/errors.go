package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"library-circulation/internal/adapter/middleware"
	"library-circulation/internal/domain/actor"
	"library-circulation/internal/domain/apperr"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

// statusFor maps an error kind to the HTTP status the client maps back.
func statusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindStateConflict:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindTransport:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError renders a usecase error. Unclassified errors are logged and
// hidden behind a generic message.
func writeError(c echo.Context, log *zap.Logger, op string, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return c.JSON(statusFor(ae.Kind), ErrorResponse{Error: ae.Message})
	}
	log.Error(op, zap.String("path", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
}

func invalid(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Details: ToFieldErrors(err),
	})
}

// bindValid binds and validates req. When it returns false the response
// has already been written.
func bindValid(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, badBody(c)
	}
	if err := c.Validate(req); err != nil {
		return false, invalid(c, err)
	}
	return true, nil
}

// whoami returns the actor put on the context by middleware.Auth.
func whoami(c echo.Context) (actor.Actor, bool) { return middleware.ActorFrom(c) }

func unauthenticated(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
}
