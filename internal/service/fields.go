package service

import (
	"context"
	"strings"

	"github.com/atinyakov/bizcard/internal/models"
)

// FieldRepository defines the persistence operations required by FieldService.
type FieldRepository interface {
	// List returns the catalog, or the seed defaults if it was never written.
	List(ctx context.Context) ([]models.FieldDefinition, error)
	// ReplaceAll overwrites the whole catalog.
	ReplaceAll(ctx context.Context, fields []models.FieldDefinition) error
}

// FieldService manages the catalog of input fields.
type FieldService struct {
	repo FieldRepository
}

// NewFieldService constructs a FieldService.
func NewFieldService(repo FieldRepository) *FieldService {
	return &FieldService{repo: repo}
}

// List returns the field catalog in display order.
func (s *FieldService) List(ctx context.Context) ([]models.FieldDefinition, error) {
	return s.repo.List(ctx)
}

// Replace validates fields and replaces the catalog with them. Keys are
// trimmed and an empty type defaults to text. On a validation error the
// stored catalog is left untouched.
func (s *FieldService) Replace(ctx context.Context, fields []models.FieldDefinition) error {
	normalized := make([]models.FieldDefinition, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))

	for _, f := range fields {
		f.Key = strings.TrimSpace(f.Key)
		if f.Key == "" {
			return models.NewValidationError("empty key", "")
		}
		if _, dup := seen[f.Key]; dup {
			return models.NewValidationError("duplicate key", f.Key)
		}
		seen[f.Key] = struct{}{}

		if strings.TrimSpace(string(f.Type)) == "" {
			f.Type = models.FieldText
		}
		normalized = append(normalized, f)
	}

	return s.repo.ReplaceAll(ctx, normalized)
}
