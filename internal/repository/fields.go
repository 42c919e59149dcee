// Package repository provides persistence implementations for the field catalog
// and the template store on top of a JSON document store.
package repository

import (
	"context"

	"github.com/atinyakov/bizcard/internal/models"
)

// FieldsDocument is the document name holding the field catalog.
const FieldsDocument = "fields.json"

// TemplatesDocument is the document name holding all templates.
const TemplatesDocument = "templates.json"

// DocumentStore reads and writes whole JSON documents.
type DocumentStore interface {
	// Read decodes the named document into dst, or copies fallback into dst
	// if the document was never written.
	Read(ctx context.Context, name string, dst any, fallback any) error
	// Write replaces the named document with doc.
	Write(ctx context.Context, name string, doc any) error
}

// FieldRepository stores the field catalog as a single document.
type FieldRepository struct {
	// Store is the backing document store.
	Store DocumentStore
	// Defaults is returned while the catalog has never been customized.
	Defaults []models.FieldDefinition
}

// NewFieldRepository creates a FieldRepository seeded with defaults.
func NewFieldRepository(store DocumentStore, defaults []models.FieldDefinition) *FieldRepository {
	return &FieldRepository{Store: store, Defaults: defaults}
}

// List returns the stored catalog in display order.
func (r *FieldRepository) List(ctx context.Context) ([]models.FieldDefinition, error) {
	fields := []models.FieldDefinition{}
	defaults := r.Defaults
	if defaults == nil {
		defaults = []models.FieldDefinition{}
	}
	if err := r.Store.Read(ctx, FieldsDocument, &fields, defaults); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = []models.FieldDefinition{}
	}
	return fields, nil
}

// ReplaceAll replaces the whole catalog.
func (r *FieldRepository) ReplaceAll(ctx context.Context, fields []models.FieldDefinition) error {
	if fields == nil {
		fields = []models.FieldDefinition{}
	}
	return r.Store.Write(ctx, FieldsDocument, fields)
}

// DefaultFields is the catalog served before an administrator customizes it.
func DefaultFields() []models.FieldDefinition {
	return []models.FieldDefinition{
		{Key: "name", Label: "Name", Type: models.FieldText, Required: true, Placeholder: "Jane Doe"},
		{Key: "title", Label: "Title", Type: models.FieldText, Placeholder: "Product Manager"},
		{Key: "company", Label: "Company", Type: models.FieldText, Placeholder: "Acme Inc."},
		{Key: "phone", Label: "Phone", Type: models.FieldTel, Required: true, Placeholder: "010-1234-5678"},
		{Key: "email", Label: "Email", Type: models.FieldEmail, Required: true, Placeholder: "jane@example.com"},
		{Key: "address", Label: "Address", Type: models.FieldText, Placeholder: "123 Main St."},
		{Key: "website", Label: "Website", Type: models.FieldURL, Placeholder: "https://example.com"},
	}
}
