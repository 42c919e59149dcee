// Package docstore persists whole JSON documents as flat files in a directory.
//
// Every write replaces the named document entirely. There is no coordination
// between writers beyond serializing writes made through one FileStore: the
// last write wins.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ParseError is returned by Read when a stored document is not valid JSON
// for the requested type.
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FileStore reads and writes JSON documents under Dir.
type FileStore struct {
	// Dir is the directory holding the documents.
	Dir string
	mu  sync.Mutex
}

// New returns a FileStore rooted at dir. The directory is created on first write.
func New(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

// Read decodes the document name into dst. If the document has never been
// written, fallback is copied into dst instead.
func (s *FileStore) Read(ctx context.Context, name string, dst any, fallback any) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return useFallback(dst, fallback)
		}
		return fmt.Errorf("read %s: %w", name, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return &ParseError{Name: name, Err: err}
	}
	return nil
}

// Write serializes doc and replaces the document name with it.
// The new content is written to a temporary file and renamed into place,
// so readers never observe a partially written document.
func (s *FileStore) Write(ctx context.Context, name string, doc any) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid document name %q", name)
	}
	return filepath.Join(s.Dir, name), nil
}

// useFallback deep-copies fallback into dst through JSON so callers never
// share mutable state with their default value.
func useFallback(dst, fallback any) error {
	data, err := json.Marshal(fallback)
	if err != nil {
		return fmt.Errorf("encode fallback: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	return dec.Decode(dst)
}
