// Package apperrors provides structured errors with kind classification and HTTP status mapping.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes an error for response formatting.
type Kind string

const (
	// KindValidation indicates malformed or out-of-range input (HTTP 400).
	KindValidation Kind = "validation"
	// KindNotFound indicates a missing resource (HTTP 404).
	KindNotFound Kind = "not_found"
	// KindAuthorization indicates the caller lacks the required role (HTTP 403).
	KindAuthorization Kind = "authorization"
	// KindStore indicates an opaque storage-layer failure (HTTP 500).
	KindStore Kind = "store"
	// KindInternal indicates any other server-side error (HTTP 500).
	KindInternal Kind = "internal"
)

// Error is a structured error carrying a kind, a user-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the HTTP status code for this error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthorization:
		return http.StatusForbidden
	case KindStore, KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Validation creates a validation error (HTTP 400).
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NotFound creates a not-found error (HTTP 404).
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Authorization creates an authorization error (HTTP 403).
func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// Store wraps a storage-layer failure. The cause is kept for logging but
// never interpreted further.
func Store(message string, cause error) *Error {
	return &Error{Kind: KindStore, Message: message, Cause: cause}
}

// Internal creates an internal error (HTTP 500).
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Cause: cause}
}

// IsKind reports whether err is a structured error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// From converts any error into a structured Error. A nil error returns nil;
// an existing *Error is returned unchanged; anything else is wrapped as internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("internal server error", err)
}
