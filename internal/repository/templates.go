package repository

import (
	"context"

	"github.com/atinyakov/bizcard/internal/models"
)

// TemplateRepository stores all templates as a single document.
type TemplateRepository struct {
	// Store is the backing document store.
	Store DocumentStore
}

// NewTemplateRepository creates a TemplateRepository over store.
func NewTemplateRepository(store DocumentStore) *TemplateRepository {
	return &TemplateRepository{Store: store}
}

// List returns every stored template in creation order.
func (r *TemplateRepository) List(ctx context.Context) ([]models.Template, error) {
	templates := []models.Template{}
	if err := r.Store.Read(ctx, TemplatesDocument, &templates, []models.Template{}); err != nil {
		return nil, err
	}
	if templates == nil {
		templates = []models.Template{}
	}
	return templates, nil
}

// SaveAll replaces the stored templates with templates.
func (r *TemplateRepository) SaveAll(ctx context.Context, templates []models.Template) error {
	if templates == nil {
		templates = []models.Template{}
	}
	return r.Store.Write(ctx, TemplatesDocument, templates)
}
