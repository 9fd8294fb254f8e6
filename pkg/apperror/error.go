// Package apperror defines the stable error taxonomy surfaced by every
// catalog operation. Each error carries a machine-readable code plus a
// human-readable message; the HTTP status is advisory for the REST layer
// that sits above this module.
package apperror

import (
	"fmt"
	"net/http"
)

// Error represents an application error with a stable code and an
// advisory HTTP status.
type Error struct {
	HTTPStatus int
	Code       string
	Message    string
	Internal   error
	Details    map[string]any
}

func (e *Error) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the internal error.
func (e *Error) Unwrap() error {
	return e.Internal
}

// Is matches errors by code, so sentinel comparisons via errors.Is survive
// WithMessage/WithInternal copies.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithInternal returns a copy of the error with an internal error attached.
func (e *Error) WithInternal(err error) *Error {
	return &Error{
		HTTPStatus: e.HTTPStatus,
		Code:       e.Code,
		Message:    e.Message,
		Internal:   err,
		Details:    e.Details,
	}
}

// WithMessage returns a copy of the error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	return &Error{
		HTTPStatus: e.HTTPStatus,
		Code:       e.Code,
		Message:    message,
		Internal:   e.Internal,
		Details:    e.Details,
	}
}

// WithMessagef is WithMessage with fmt.Sprintf semantics.
func (e *Error) WithMessagef(format string, args ...any) *Error {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// WithDetails returns a copy of the error with details attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	return &Error{
		HTTPStatus: e.HTTPStatus,
		Code:       e.Code,
		Message:    e.Message,
		Internal:   e.Internal,
		Details:    details,
	}
}

// New creates a new application error.
func New(status int, code, message string) *Error {
	return &Error{
		HTTPStatus: status,
		Code:       code,
		Message:    message,
	}
}

// Error taxonomy for catalog operations. Validation errors abort an
// operation before any write; conflict is retryable by the caller with a
// fresh read.
var (
	// ErrNotFound: entity, relationship target, or time-series record absent.
	ErrNotFound = New(http.StatusNotFound, "not_found", "Resource not found")

	// ErrInvalidReference: a referenced entity failed type or existence
	// validation during the preparation phase.
	ErrInvalidReference = New(http.StatusBadRequest, "invalid_reference", "Referenced entity is invalid")

	// ErrInvalidArgument: malformed input such as an unknown field name or a
	// list element with no matching identity.
	ErrInvalidArgument = New(http.StatusBadRequest, "invalid_argument", "Invalid argument")

	// ErrInvalidCursor: a pagination cursor that does not decode.
	ErrInvalidCursor = New(http.StatusBadRequest, "invalid_cursor", "Invalid pagination cursor")

	// ErrConflict: optimistic-concurrency version mismatch on concurrent
	// update. The core performs no automatic retry.
	ErrConflict = New(http.StatusConflict, "conflict", "Entity was modified concurrently")

	ErrDatabase = New(http.StatusInternalServerError, "database_error", "Database operation failed")
	ErrInternal = New(http.StatusInternalServerError, "internal_error", "An internal error occurred")
)

// NewNotFound creates a not found error for a resource type and identifier.
func NewNotFound(resourceType, id string) *Error {
	return ErrNotFound.WithMessagef("%s '%s' not found", resourceType, id)
}

// NewInvalidArgument creates an invalid argument error with a custom message.
func NewInvalidArgument(message string) *Error {
	return ErrInvalidArgument.WithMessage(message)
}

// ToHTTPError converts any error to the wire shape consumed by the REST
// layer: a status code plus {"error": {"code", "message", "details"}}.
func ToHTTPError(err error) (int, map[string]any) {
	if appErr, ok := err.(*Error); ok {
		errBody := map[string]any{
			"code":    appErr.Code,
			"message": appErr.Message,
		}
		if len(appErr.Details) > 0 {
			errBody["details"] = appErr.Details
		}
		return appErr.HTTPStatus, map[string]any{
			"error": errBody,
		}
	}

	return http.StatusInternalServerError, map[string]any{
		"error": map[string]any{
			"code":    "internal_error",
			"message": "An internal error occurred",
		},
	}
}
