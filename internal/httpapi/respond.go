package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/feiralivre/storefront/internal/api"
	"github.com/feiralivre/storefront/internal/cart"
	"github.com/feiralivre/storefront/internal/checkout"
	"github.com/feiralivre/storefront/internal/order"
	"github.com/feiralivre/storefront/internal/session"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, details string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Code:    code,
		Details: details,
	})
}

// respondDomainError maps workflow errors onto HTTP statuses and logs the
// failure under the request id. Backend failures pass their original status
// through; nothing here retries.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Warn("request failed", "request_id", getRequestID(r.Context()), "error", err)
	switch {
	case checkout.IsValidation(err),
		errors.Is(err, cart.ErrInvalidProductID),
		errors.Is(err, checkout.ErrUnknownCarrier):
		respondError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, session.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, order.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, cart.ErrSessionUnresolved):
		respondError(w, http.StatusServiceUnavailable, "session_unresolved", err.Error())
	case errors.Is(err, checkout.ErrSubmitInFlight),
		errors.Is(err, checkout.ErrIllegalTransition),
		errors.Is(err, checkout.ErrOrderWithoutID),
		errors.Is(err, order.ErrIllegalPhase):
		respondError(w, http.StatusConflict, "conflict", err.Error())
	default:
		if remote, ok := api.AsRemote(err); ok {
			status := remote.StatusCode
			if status == 0 {
				status = http.StatusBadGateway
			}
			respondError(w, status, "backend_error", remote.BackendMessage)
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
