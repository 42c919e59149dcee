// Package service provides the business logic of the card generator:
// admin authentication, the field catalog, the template store and the
// relay of finished cards, delegating persistence to repository interfaces.
package service

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/atinyakov/bizcard/internal/models"
	"github.com/atinyakov/bizcard/internal/session"
)

// DefaultSessionTTL is how long an admin token stays valid.
const DefaultSessionTTL = 12 * time.Hour

// AuthService implements admin login against a single configured password.
type AuthService struct {
	// sessions holds the issued tokens.
	sessions session.Store
	password string
	ttl      time.Duration
}

// NewAuthService constructs an AuthService. An empty password disables login
// until one is configured.
func NewAuthService(sessions session.Store, password string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthService{sessions: sessions, password: password, ttl: ttl}
}

// Login issues a new session if password matches the admin password.
func (s *AuthService) Login(ctx context.Context, password string) (models.AdminSession, error) {
	if s.password == "" {
		return models.AdminSession{}, &models.ConfigurationError{Missing: []string{"ADMIN_PASSWORD"}}
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) != 1 {
		return models.AdminSession{}, models.ErrInvalidCredentials
	}
	return s.sessions.Issue(ctx, s.ttl)
}

// Authenticate checks that token belongs to a live admin session.
func (s *AuthService) Authenticate(ctx context.Context, token string) error {
	return s.sessions.Validate(ctx, token)
}

// Logout revokes token. It never fails.
func (s *AuthService) Logout(ctx context.Context, token string) {
	s.sessions.Revoke(ctx, token)
}
