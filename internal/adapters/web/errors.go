package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"koperasi-ledger/internal/core"

	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONStatus writes a JSON response with an explicit status code.
func writeJSONStatus(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps service-layer errors onto HTTP statuses. Validation
// and overpayment are the caller's fault (422), missing rows are 404, write
// conflicts are 409 and retriable, and everything else is an opaque 500 so
// storage internals never leak to clients.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr  *core.ValidationError
		notFoundErr    *core.NotFoundError
		overpaymentErr *core.OverpaymentError
		conflictErr    *core.ConcurrencyError
	)
	switch {
	case errors.As(err, &validationErr):
		writeError(w, r, validationErr.Msg, "VALIDATION_ERROR", http.StatusUnprocessableEntity)
	case errors.As(err, &overpaymentErr):
		writeError(w, r, overpaymentErr.Error(), "OVERPAYMENT", http.StatusUnprocessableEntity)
	case errors.As(err, &notFoundErr):
		writeError(w, r, notFoundErr.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.As(err, &conflictErr):
		writeError(w, r, "conflicting concurrent update, retry the request", "CONFLICT", http.StatusConflict)
	default:
		log.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("request failed")
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
