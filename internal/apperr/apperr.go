// Package apperr is the error taxonomy shared by services and handlers.
// Services return *Error values; handlers map Kind to an HTTP status.
package apperr

import (
	"net/http"

	"github.com/pkg/errors"
)

type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "unauthenticated"
	KindForbidden      Kind = "forbidden"
	KindNotFound       Kind = "not_found"
	KindRateLimited    Kind = "rate_limited"
	KindServer         Kind = "server"
)

// Error carries a user-facing message. Cause is logged, never returned to clients.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Status returns the HTTP status for the error kind.
func (e *Error) Status() int {
	return StatusOf(e.Kind)
}

func StatusOf(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

func Unauthenticated(msg string) *Error { return &Error{Kind: KindAuthentication, Message: msg} }

func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

func RateLimited(msg string) *Error { return &Error{Kind: KindRateLimited, Message: msg} }

// Server wraps an unexpected failure (store unavailable, encoding failure, ...).
func Server(cause error, msg string) *Error {
	return &Error{Kind: KindServer, Message: msg, Cause: errors.WithStack(cause)}
}

// As extracts an *Error from err. Unclassified errors become Server errors.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindServer, Message: "Server error", Cause: err}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// Body renders e as the JSON error envelope. details is omitted when empty.
func Body(e *Error, details string) map[string]interface{} {
	body := map[string]interface{}{"message": e.Message, "error": string(e.Kind)}
	if details != "" {
		body["details"] = details
	}
	return body
}
