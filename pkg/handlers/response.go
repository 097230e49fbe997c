// Package handlers exposes the engine's operations over HTTP. Handlers
// decode and validate the wire payloads, delegate to services, and map the
// error taxonomy onto status codes.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/staffhive/staffing-engine/pkg/apperrors"
)

// ApiResponse wraps response payloads in a uniform envelope.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// writeServiceError maps the service error taxonomy to HTTP statuses:
// missing references are 404, unresolved id sets 400, state machine and
// capacity violations 409, everything else 500.
func writeServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var (
		status    = http.StatusInternalServerError
		errorCode = "internal_error"
	)

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
		errorCode = "not_found"
	case errors.Is(err, apperrors.ErrInvalidReference):
		status = http.StatusBadRequest
		errorCode = "invalid_reference"
	case errors.Is(err, apperrors.ErrInvariantViolation):
		status = http.StatusConflict
		errorCode = "invariant_violation"
	default:
		logger.Error("Request failed", zap.Error(err))
	}

	if err := ErrorResponse(w, status, errorCode, err.Error()); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
