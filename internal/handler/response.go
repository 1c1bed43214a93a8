package handler

// RESPONSE HELPERS:
// Every JSON response goes through writeJSON and every error through
// writeError, so all errors share one shape:
//
//	{"error": "unauthorized", "message": "log in to refresh statistics"}
//
// HTML pages use statusFor to pick the same status code for the same error.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/gitstats/internal/apperror"
)

// ErrorResponse is the error body of every JSON endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable, e.g. "not_found"
	Message string `json:"message"` // human-readable
}

// writeJSON sets the header, then the status, then encodes the body.
// Headers changed after the first Write are ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// statusFor maps a domain error to an HTTP status, an error type and a
// message that is safe to show. Errors that are not *apperror.AppError are
// internal: their text may hold SQL or file paths and is never returned.
//
// errors.Is walks the whole chain, so a service error like
//
//	fmt.Errorf("service/stats: ...: %w", apperror.Unauthorized("..."))
//
// still maps to 401.
func statusFor(err error) (int, string, string) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, "internal_error", "An internal error occurred"
	}

	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error", appErr.Message
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized", appErr.Message
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found", appErr.Message
	case errors.Is(err, apperror.ErrUpstream):
		return http.StatusBadGateway, "upstream_error", appErr.Message
	}
	return http.StatusInternalServerError, "internal_error", appErr.Message
}

// writeError sends err as an ErrorResponse.
func writeError(w http.ResponseWriter, err error) {
	status, errorType, message := statusFor(err)
	writeJSON(w, status, ErrorResponse{Error: errorType, Message: message})
}
