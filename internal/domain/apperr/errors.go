// Package apperr holds the error kinds shared by every layer of the
// circulation service and its client.
package apperr

import "errors"

type Kind string

const (
	KindValidation    Kind = "validation"
	KindStateConflict Kind = "state_conflict"
	KindNotFound      Kind = "not_found"
	KindAuthorization Kind = "authorization"
	KindTransport     Kind = "transport"
)

// Error is a classified, user-facing error. Message is shown verbatim to
// the actor that triggered it.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is matches by kind when target carries no message, and by kind and
// message otherwise. This lets callers test either the broad class
// (apperr.ErrStateConflict) or one specific sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// Kind-only sentinels for errors.Is.
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrStateConflict = &Error{Kind: KindStateConflict}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrAuthorization = &Error{Kind: KindAuthorization}
	ErrTransport     = &Error{Kind: KindTransport}
)

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func Conflict(msg string) *Error { return &Error{Kind: KindStateConflict, Message: msg} }
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindAuthorization, Message: msg} }
func Transport(msg string) *Error { return &Error{Kind: KindTransport, Message: msg} }

// KindOf returns the kind of the first *Error in err's chain, or "" when
// err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
