// Package models defines the core data structures for the card generator:
// input field definitions, card templates and admin sessions.
package models

import (
	"encoding/json"
	"time"
)

// FieldType is the HTML input type a field is rendered with.
type FieldType string

const (
	// FieldText is a plain single-line text input.
	FieldText FieldType = "text"
	// FieldTel is a phone number input.
	FieldTel FieldType = "tel"
	// FieldEmail is an email address input.
	FieldEmail FieldType = "email"
	// FieldURL is a web address input.
	FieldURL FieldType = "url"
)

// FieldDefinition describes one input slot shown to users filling out a card.
type FieldDefinition struct {
	// Key identifies the field; unique within the catalog.
	Key string `json:"key"`
	// Label is the human-readable caption.
	Label string `json:"label"`
	// Type is the input type ("text", "tel", "email", ...).
	Type FieldType `json:"type"`
	// Required marks the field as mandatory for end users.
	Required bool `json:"required"`
	// Placeholder is the hint shown in an empty input.
	Placeholder string `json:"placeholder"`
}

// Size is a canvas size in pixels.
type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Template is a reusable card background plus field layout.
type Template struct {
	// ID is assigned at creation and never changes.
	ID string `json:"id"`
	// Name is the display name.
	Name string `json:"name"`
	// Size is the canvas size.
	Size Size `json:"size"`
	// BackgroundURL is the path of the background image, or empty.
	BackgroundURL string `json:"backgroundUrl"`
	// EnabledFields lists field keys in display order.
	EnabledFields []string `json:"enabledFields"`
	// Fields holds per-field layout and style data, opaque to the store.
	Fields map[string]json.RawMessage `json:"fields"`
}

// AdminSession is an issued bearer token and its absolute expiry.
type AdminSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is no longer valid at now.
func (s AdminSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// ArtifactKind is the kind of finished card relayed to the administrator.
type ArtifactKind string

const (
	// ArtifactPDF is a rendered PDF card.
	ArtifactPDF ArtifactKind = "pdf"
	// ArtifactImage is a rendered PNG or JPEG card.
	ArtifactImage ArtifactKind = "image"
)

// Artifact is a finished card ready to be sent.
type Artifact struct {
	Kind        ArtifactKind
	Filename    string
	ContentType string
	Content     []byte
}
