package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"library-circulation/internal/domain/apperr"
)

// Error kinds for errors.Is. Each matches any error of its kind returned by
// the client, whatever the message.
var (
	ErrValidation    = apperr.ErrValidation
	ErrStateConflict = apperr.ErrStateConflict
	ErrNotFound      = apperr.ErrNotFound
	ErrAuthorization = apperr.ErrAuthorization
	ErrTransport     = apperr.ErrTransport
)

// TransportError means the service could not be reached or failed on its
// own side. The request may or may not have been applied; nothing is
// retried automatically.
type TransportError struct {
	Op        string
	Status    int // 0 when no response arrived
	Retryable bool
	Err       error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: service unavailable (HTTP %d), try again", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: cannot reach the library service, try again: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, apperr.ErrTransport) match.
func (e *TransportError) Is(target error) bool {
	var ae *apperr.Error
	if !errors.As(target, &ae) {
		return false
	}
	return ae.Kind == apperr.KindTransport && ae.Message == ""
}

type errorBody struct {
	Error   string `json:"error"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}

func kindForStatus(code int) apperr.Kind {
	switch code {
	case http.StatusConflict:
		return apperr.KindStateConflict
	case http.StatusNotFound:
		return apperr.KindNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperr.KindAuthorization
	}
	return apperr.KindValidation
}

// apiError turns a 4xx body into a classified error whose message is the
// server's, verbatim.
func apiError(code int, body errorBody) error {
	msg := body.Error
	if msg == "" {
		msg = http.StatusText(code)
	}
	if len(body.Details) > 0 {
		parts := make([]string, 0, len(body.Details))
		for _, d := range body.Details {
			parts = append(parts, d.Field+" "+d.Message)
		}
		msg += ": " + strings.Join(parts, "; ")
	}
	return &apperr.Error{Kind: kindForStatus(code), Message: msg}
}

func retryableStatus(code int) bool {
	return code == http.StatusBadGateway || code == http.StatusServiceUnavailable || code == http.StatusGatewayTimeout
}
