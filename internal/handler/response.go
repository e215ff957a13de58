package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// CONSISTENT ERROR FORMAT:
// Every error response has the same shape:
//
//	{"error": "Couleur not found"}
//
// The mapping is deliberately coarse: not-found is 404, everything else is
// 400, and the message is whatever the failing layer said, store errors
// included.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mohamedamineameur/renderback/internal/apperror"
)

// ErrorResponse is the error body returned by all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status must be written before the body; once Encode writes,
// later header changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent — we can only log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// errorStatus maps an error to its HTTP status.
func errorStatus(err error) int {
	if errors.Is(err, apperror.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

// writeError sends err as {"error": message}.
//
// errors.As pulls the *AppError out of any fmt.Errorf wrapping added on the
// way up, so the client sees the AppError's own message (for store errors,
// the driver's text) rather than the wrapped chain.
func writeError(w http.ResponseWriter, err error) {
	message := err.Error()

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	writeJSON(w, errorStatus(err), ErrorResponse{Error: message})
}
