package models

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used across all layers.
var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConfiguration      = errors.New("missing configuration")
	ErrTransport          = errors.New("transport error")
	ErrFormat             = errors.New("unsupported format")
)

// ValidationError describes malformed or missing input.
type ValidationError struct {
	Reason string
	// Key is the offending field key, if any.
	Key string
}

func (e *ValidationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %q", e.Reason, e.Key)
	}
	return e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError.
func NewValidationError(reason, key string) *ValidationError {
	return &ValidationError{Reason: reason, Key: key}
}

// AuthErrorKind tells why a bearer token was rejected.
type AuthErrorKind int

const (
	AuthMissing AuthErrorKind = iota
	AuthInvalid
	AuthExpired
)

// AuthError is returned when a protected call is not authorized.
type AuthError struct {
	Kind AuthErrorKind
}

func (e *AuthError) Error() string {
	switch e.Kind {
	case AuthMissing:
		return "missing token"
	case AuthExpired:
		return "token expired"
	default:
		return "invalid token"
	}
}

func (e *AuthError) Unwrap() error { return ErrUnauthorized }

// ConfigurationError lists required settings that are not set.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "Missing env: " + strings.Join(e.Missing, ", ")
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// TransportError is a failure reported by the email transport.
type TransportError struct {
	Detail string
}

func (e *TransportError) Error() string {
	return e.Detail
}

func (e *TransportError) Unwrap() error { return ErrTransport }

// FormatError is returned for payloads that are not an accepted data URL.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return e.Reason
}

func (e *FormatError) Unwrap() error { return ErrFormat }
