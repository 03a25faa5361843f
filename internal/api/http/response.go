package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"accreditation-backend/internal/domain"
	"accreditation-backend/internal/logger"
	"accreditation-backend/internal/security"
	"accreditation-backend/internal/service"
	"accreditation-backend/internal/trigger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden), errors.Is(err, security.ErrWrongTokenType):
		return http.StatusForbidden
	case errors.Is(err, security.ErrInvalidToken), errors.Is(err, security.ErrExpiredToken), errors.Is(err, security.ErrMissingToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, trigger.ErrMalformedEvent):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrUnknownStatus):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
