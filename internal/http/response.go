package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"spendwise/internal/core"
	"spendwise/internal/identity"
	"spendwise/internal/log"
)

// errBadRequest marks malformed request input. Handlers wrap it so the
// status mapping can distinguish a bad request from an internal failure.
var errBadRequest = errors.New("bad request")

// envelope is the uniform JSON response shape: every reply carries a success
// flag, a human-readable message, and an optional payload.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{
		Success: status < 400,
		Message: message,
		Data:    data,
	}); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors to HTTP status codes and renders the
// envelope. Unrecognized errors become opaque 500s so internals never leak.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, identity.ErrNoOwner):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, core.ErrDuplicateName),
		errors.Is(err, core.ErrHasReferences):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrDescriptionTooLong),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrCategoryTypeMismatch),
		errors.Is(err, core.ErrInvalidName),
		errors.Is(err, core.ErrInvalidIcon),
		errors.Is(err, core.ErrInvalidColor):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	}

	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldError, err.Error(), log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
	}

	var data any
	var refErr *core.ReferenceError
	if errors.As(err, &refErr) {
		data = map[string]int64{
			"category_id":       refErr.CategoryID,
			"transaction_count": refErr.Count,
		}
	}

	writeJSON(w, status, message, data)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, message, nil)
}
