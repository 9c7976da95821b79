package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"moneta/internal/core"
	"moneta/internal/middleware/trace"
	"moneta/internal/services"
	"moneta/internal/storage"
)

// errorBody is the envelope every error response uses.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

func writeError(w http.ResponseWriter, status int, code, message string, fields map[string]string) {
	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:    code,
		Message: message,
		Fields:  fields,
	}})
}

// validationErrors are user mistakes reported as 400s with the sentinel text.
var validationErrors = []error{
	core.ErrInvalidDate,
	core.ErrInvalidAmount,
	core.ErrInvalidType,
	core.ErrEmptyDescription,
	core.ErrLongDescription,
	core.ErrEmptyName,
	core.ErrLongName,
	core.ErrInvalidEmail,
	core.ErrShortPassword,
	services.ErrInvalidMonth,
	services.ErrTooManyRows,
}

// writeServiceError maps domain errors onto HTTP statuses. Anything
// unrecognized is a 500 with the detail kept out of the response.
func writeServiceError(r *http.Request, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "resource not found", nil)
	case errors.Is(err, storage.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", "resource already exists", nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials", nil)
	default:
		for _, sentinel := range validationErrors {
			if errors.Is(err, sentinel) {
				writeError(w, http.StatusBadRequest, "invalid_request", sentinel.Error(), nil)
				return
			}
		}
		slog.ErrorContext(r.Context(), "request failed",
			"request_id", trace.RequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error", nil)
	}
}

// decodeBody parses a JSON request body, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
