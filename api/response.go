package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Error codes returned in the body of non-2xx responses.
const (
	CodeInvalidQuestion = "INVALID_QUESTION"
	CodeQuestionTooLong = "QUESTION_TOO_LONG"
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeNotFound        = "NOT_FOUND"
	CodeUnavailable     = "SERVICE_UNAVAILABLE"
	CodeInternal        = "INTERNAL_ERROR"
)

// writeJSON writes a JSON response with the given status code.
// Note: if encoding fails after WriteHeader is called, there is no way
// to notify the client since the status code is already sent. The error
// is logged but does not affect the response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse represents a JSON error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}
