package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"quickkart/internal/middleware"
	"quickkart/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes a standardised error response with the given status code.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	logger.Error().
		Str("error_code", code).
		Str("error", message).
		Int("status", status).
		Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: middleware.RequestIDFromContext(r.Context()),
	})
}

// writeDomainError maps a service error to an HTTP status and writes it.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
		return
	}

	status := http.StatusInternalServerError
	switch domainErr.Code {
	case model.ErrCodeCouponInvalid,
		model.ErrCodeProductLimit,
		model.ErrCodeVariantLimit,
		model.ErrCodeInvalidQuantity,
		model.ErrCodeCartEmpty,
		model.ErrCodeInvalidJSON,
		model.ErrCodeMissingField:
		status = http.StatusBadRequest
	case model.ErrCodeLineNotFound, model.ErrCodeProductNotFound:
		status = http.StatusNotFound
	case model.ErrCodeOutOfStock:
		status = http.StatusConflict
	case model.ErrCodeUnauthorised:
		status = http.StatusUnauthorized
	case model.ErrCodeUpstreamFailure:
		status = http.StatusBadGateway
	}

	writeError(w, r, status, domainErr.Code, domainErr.Message, logger)
}

// deviceID extracts the device identifier every cart route is keyed by.
func deviceID(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (string, bool) {
	id := r.Header.Get("X-Device-ID")
	if id == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "X-Device-ID header is required", logger)
		return "", false
	}
	return id, true
}
