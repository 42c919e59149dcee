// Package session keeps admin bearer-token sessions in process memory.
//
// Sessions do not survive a restart; every process start forces administrators
// to log in again.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/atinyakov/bizcard/internal/models"
)

// tokenBytes is the amount of randomness behind each token.
const tokenBytes = 32

// Store issues, validates and revokes admin sessions.
type Store interface {
	// Issue creates a session valid for ttl.
	Issue(ctx context.Context, ttl time.Duration) (models.AdminSession, error)
	// Validate checks that token names a live session. Expired sessions are removed.
	Validate(ctx context.Context, token string) error
	// Revoke removes token. Revoking an unknown token is not an error.
	Revoke(ctx context.Context, token string)
	// SweepExpired removes every expired session and returns how many were removed.
	SweepExpired(ctx context.Context) int
}

// MemoryStore is a Store backed by a mutex-guarded map.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]time.Time
	now      func() time.Time
	random   io.Reader
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// WithRandom overrides the token entropy source.
func WithRandom(r io.Reader) Option {
	return func(s *MemoryStore) {
		s.random = r
	}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]time.Time),
		now:      time.Now,
		random:   rand.Reader,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue generates a fresh random token that expires ttl from now.
func (s *MemoryStore) Issue(ctx context.Context, ttl time.Duration) (models.AdminSession, error) {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return models.AdminSession{}, fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.sessions[token]; taken {
		return models.AdminSession{}, fmt.Errorf("generate token: collision")
	}
	expiresAt := s.now().Add(ttl)
	s.sessions[token] = expiresAt

	return models.AdminSession{Token: token, ExpiresAt: expiresAt}, nil
}

// Validate reports a *models.AuthError when token is empty, unknown or expired.
// Every call also sweeps all other expired sessions.
func (s *MemoryStore) Validate(ctx context.Context, token string) error {
	if token == "" {
		return &models.AuthError{Kind: models.AuthMissing}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	expiresAt, ok := s.sessions[token]
	s.sweepLocked(now)

	if !ok {
		return &models.AuthError{Kind: models.AuthInvalid}
	}
	if (models.AdminSession{ExpiresAt: expiresAt}).Expired(now) {
		return &models.AuthError{Kind: models.AuthExpired}
	}
	return nil
}

// Revoke deletes token.
func (s *MemoryStore) Revoke(ctx context.Context, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// SweepExpired removes all sessions whose expiry has passed.
func (s *MemoryStore) SweepExpired(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

// Len returns the number of stored sessions, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *MemoryStore) sweepLocked(now time.Time) int {
	removed := 0
	for token, expiresAt := range s.sessions {
		if !now.Before(expiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}
