package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"cohortpulse/internal/auth"
	apierrors "cohortpulse/internal/errors"
)

// AuthHandler serves login, logout, and session introspection.
type AuthHandler struct {
	auth   *auth.Service
	logger *slog.Logger
}

func NewAuthHandler(service *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   service,
		logger: logger.With(slog.String("component", "auth_handler")),
	}
}

// Routes returns the auth routes.
func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/google", h.LoginGoogle)
	r.Post("/password", h.LoginPassword)
	r.Post("/logout", h.Logout)
	r.With(h.requireAuth).Get("/me", h.Me)
	return r
}

func (h *AuthHandler) requireAuth(next http.Handler) http.Handler {
	if h.auth == nil {
		return next
	}
	return h.auth.Middleware(next)
}

type googleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type passwordLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// LoginGoogle exchanges a Google ID token for a session.
func (h *AuthHandler) LoginGoogle(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil || !h.auth.Enabled() {
		respondError(w, r, apierrors.ErrNotFound)
		return
	}
	var req googleLoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	session, err := h.auth.LoginGoogle(r.Context(), req.IDToken)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, session)
}

// LoginPassword exchanges the shared lab password for a session.
func (h *AuthHandler) LoginPassword(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil || !h.auth.Enabled() {
		respondError(w, r, apierrors.ErrNotFound)
		return
	}
	var req passwordLoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	session, err := h.auth.LoginPassword(r.Context(), req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, session)
}

// Logout closes the caller's session. Always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.auth != nil {
		if header := r.Header.Get("Authorization"); len(header) > 7 {
			h.auth.Logout(header[7:])
		}
	}
	render.JSON(w, r, map[string]any{"success": true})
}

// Me returns the caller's session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		respondError(w, r, apierrors.ErrUnauthorized)
		return
	}
	render.JSON(w, r, session)
}
