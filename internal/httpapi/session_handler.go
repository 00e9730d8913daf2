package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/feiralivre/storefront/internal/commerce"
	"github.com/feiralivre/storefront/internal/session"
)

type SessionHandler struct {
	sessions *session.Provider
	timeout  time.Duration
}

func NewSessionHandler(sessions *session.Provider, timeout time.Duration) *SessionHandler {
	return &SessionHandler{sessions: sessions, timeout: timeout}
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponseDTO struct {
	State string         `json:"state"`
	User  *commerce.User `json:"user,omitempty"`
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, SessionResponseDTO{
		State: h.sessions.State().String(),
		User:  h.sessions.User(),
	})
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	user, err := h.sessions.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, SessionResponseDTO{
		State: h.sessions.State().String(),
		User:  user,
	})
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.sessions.Logout(ctx)
	respondJSON(w, http.StatusNoContent, nil)
}
