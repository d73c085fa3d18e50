package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"askcents/internal/advice"
	"askcents/internal/aggregator"
	"askcents/internal/amqp"
	"askcents/internal/core"
	"askcents/internal/goals"
	"askcents/internal/kv"
	"askcents/internal/rewards"
)

// errorResponse is the body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "component", "http", "error", err)
	}
}

// writeError sends {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps a service error onto a status code. Unknown errors
// become 500 without leaking their text.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classifyError(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"component", "http",
			"path", r.URL.Path,
			"error", err)
	}
	writeError(w, status, msg)
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, goals.ErrNotFound),
		errors.Is(err, rewards.ErrUnknownTask),
		errors.Is(err, kv.ErrUnknownPreference):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, core.ErrEmptyTitle),
		errors.Is(err, core.ErrTitleTooLong),
		errors.Is(err, core.ErrInvalidTarget),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, goals.ErrInvalidCategory),
		errors.Is(err, advice.ErrEmptyQuestion),
		errors.Is(err, advice.ErrQuestionTooLong),
		errors.Is(err, advice.ErrUnknownAction):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, amqp.ErrCircuitOpen):
		return http.StatusServiceUnavailable, "refresh queue unavailable"
	case errors.Is(err, aggregator.ErrUpstream):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
