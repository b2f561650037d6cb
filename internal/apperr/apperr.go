package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP mapping and user messaging.
type Kind string

const (
	Invalid      Kind = "invalid"
	Unauthorized Kind = "unauthorized"
	NotFound     Kind = "not_found"
	Unavailable  Kind = "unavailable"
	Upstream     Kind = "upstream"
	Internal     Kind = "internal"
)

// Error carries a kind, an optional field name for validation failures,
// a message safe to show to the user, and the wrapped internal error.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = &Error{Kind: NotFound, Message: "not found"}

// NewValidation reports a client-detected validation failure. The message
// is shown to the user before any network call is made.
func NewValidation(field, message string) *Error {
	return &Error{Kind: Invalid, Field: field, Message: message}
}

// NewUnauthorized reports a missing or invalid session.
func NewUnauthorized(message string) *Error {
	return &Error{Kind: Unauthorized, Message: message}
}

// NewUnavailable wraps a transport-level failure reaching an upstream
// service. The public message is deliberately generic.
func NewUnavailable(err error) *Error {
	return &Error{Kind: Unavailable, Message: "cannot reach server", Err: err}
}

// NewUpstream surfaces an upstream-reported error detail verbatim.
func NewUpstream(detail string) *Error {
	if detail == "" {
		detail = "request failed"
	}
	return &Error{Kind: Upstream, Message: detail}
}

// Wrap marks an unexpected internal error. The public message is generic.
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: Internal, Message: "internal server error", Err: err}
}

// As unwraps err into an *Error when possible.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// HTTPStatus maps an error to the status code handlers should return.
func HTTPStatus(err error) int {
	ae, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case Invalid:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case Unavailable:
		return http.StatusBadGateway
	case Upstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the user-facing message for err. Internal details
// never leak; unknown errors get a generic fallback.
func PublicMessage(err error) string {
	if ae, ok := As(err); ok && ae.Message != "" {
		return ae.Message
	}
	return "internal server error"
}
