// Package http provides the HTTP handlers of the card generator: admin
// login, the field catalog, templates, image uploads and card relay.
package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/bizcard/internal/middleware"
	"github.com/atinyakov/bizcard/internal/models"
	"go.uber.org/zap"
)

// AuthService defines the admin authentication operations required by the
// HTTP handlers.
type AuthService interface {
	// Login issues a session if password is the admin password.
	Login(ctx context.Context, password string) (models.AdminSession, error)
	// Authenticate checks that token belongs to a live session.
	Authenticate(ctx context.Context, token string) error
	// Logout revokes token.
	Logout(ctx context.Context, token string)
}

// AuthHandler handles admin login and logout.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	Log         *zap.Logger
}

// LoginRequest represents the JSON payload for admin login.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	OK    bool   `json:"ok"`
	Token string `json:"token"`
	// ExpiresAt is the expiry in Unix milliseconds.
	ExpiresAt int64 `json:"expiresAt"`
}

// Login handles POST /api/admin/login.
// It expects {"password": "..."} and responds with a bearer token and its
// expiry, 400 if the password is missing or 401 if it is wrong.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	s, err := h.AuthService.Login(r.Context(), req.Password)
	if err != nil {
		logger(h.Log).Warn("admin login failed", zap.Error(err))
		writeError(w, r, h.Log, err)
		return
	}

	logger(h.Log).Info("admin logged in", zap.Time("expires_at", s.ExpiresAt))
	writeJSON(w, http.StatusOK, LoginResponse{
		OK:        true,
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt.UnixMilli(),
	})
}

// Logout handles POST /api/admin/logout. It must run behind AdminAuth.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.AuthService.Logout(r.Context(), middleware.GetTokenFromContext(r.Context()))
	writeOK(w, nil)
}
