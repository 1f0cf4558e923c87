package http

import (
	"errors"
	"net/http"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/idempotency"
	"evrental-backend/internal/logger"
	"evrental-backend/internal/service"
)

type errorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

// writeError translates the domain error taxonomy into a status code.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "validation_failed", Fields: verr.Fields})
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "validation_failed"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Code: "not_found"})
	case errors.Is(err, domain.ErrOutOfStock):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Code: "out_of_stock"})
	case errors.Is(err, domain.ErrInvalidState):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Code: "invalid_state"})
	case errors.Is(err, idempotency.ErrInProgress):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Code: "request_in_progress"})
	case errors.Is(err, domain.ErrTransactionFailure):
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: domain.ErrTransactionFailure.Error(), Code: "transaction_failed"})
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error(), Code: "invalid_credentials"})
	default:
		logger.ErrorContext(r.Context(), "Unhandled request error", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: "internal_error"})
	}
}
