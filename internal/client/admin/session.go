package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Session is an admin login remembered between cardadmin runs.
type Session struct {
	Server    string    `json:"server"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Usable reports whether s was issued by server and is still valid at now.
func (s Session) Usable(server string, now time.Time) bool {
	return s.Token != "" && s.Server == server && now.Before(s.ExpiresAt)
}

// SessionFile stores a Session as JSON on disk.
type SessionFile struct {
	Path string
}

// DefaultSessionPath returns the per-user session location, or a file in the
// working directory when no config dir is available.
func DefaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".cardadmin-session.json"
	}
	return filepath.Join(dir, "bizcard", "session.json")
}

// Load reads the stored session. A missing file yields an empty Session.
func (f SessionFile) Load() (Session, error) {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, nil
		}
		return Session{}, err
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, fmt.Errorf("session file %s: %w", f.Path, err)
	}
	return s, nil
}

// Save writes s readable by the current user only.
func (f SessionFile) Save(s Session) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, raw, 0o600)
}

// Clear removes the stored session.
func (f SessionFile) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
