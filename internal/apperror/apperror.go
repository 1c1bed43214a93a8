// Package apperror defines the error kinds the HTTP layer knows how to map
// to status codes.
//
// Lower layers return an *AppError wrapping one of the sentinels; handlers
// check the kind with errors.Is and never parse messages.
//
//	ErrNotFound     → 404
//	ErrValidation   → 400
//	ErrUnauthorized → 401
//	ErrUpstream     → 502
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream error")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // safe to show to the user
	Field   string // optional: the input field at fault
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Unauthorized is returned when an operation needs a logged-in user, or the
// stored credentials of that user can no longer be used.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Upstream reports that GitHub could not be reached or answered with an
// error. The cause is kept for logs; only the message reaches the client.
func Upstream(message string, cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrUpstream, cause),
		Message: message,
	}
}
