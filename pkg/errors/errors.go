package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string
	Message string
	Status  int
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so callers can use errors.Is against
// the predefined values even after Clone.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors. Missing records are reported as 400 like every other
// client mistake; only unmatched routes produce a 404.
var (
	ErrValidation           = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrNotFound             = New("NOT_FOUND", http.StatusBadRequest, "resource not found")
	ErrConflict             = New("CONFLICT", http.StatusBadRequest, "resource already exists")
	ErrInvalidData          = New("INVALID_DATA", http.StatusBadRequest, "Invalid data")
	ErrUnauthorized         = New("UNAUTHORIZED", http.StatusUnauthorized, "You're not logged in")
	ErrNotAdmin             = New("NOT_ADMIN", http.StatusUnauthorized, "You're not an admin")
	ErrAlreadyLoggedIn      = New("ALREADY_LOGGED_IN", http.StatusBadRequest, "You're already logged in")
	ErrInvalidCredentials   = New("INVALID_CREDENTIALS", http.StatusBadRequest, "Invalid password")
	ErrAdminWithoutPassword = New("ADMIN_WITHOUT_PASSWORD", http.StatusInternalServerError, "Admin doesn't have password")
	ErrRouteNotFound        = New("ROUTE_NOT_FOUND", http.StatusNotFound, "Page not found")
	ErrInternal             = New("INTERNAL_ERROR", http.StatusInternalServerError, "Unknown error")
	ErrCacheMiss            = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Internal wraps err as an internal failure; the message is kept for logs
// while clients only ever see the generic text.
func Internal(err error, message string) *Error {
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, message)
}

// PublicMessage is the text safe to return to clients.
func (e *Error) PublicMessage() string {
	if e == nil {
		return ""
	}
	if e.Code == ErrInternal.Code {
		return ErrInternal.Message
	}
	return e.Message
}
