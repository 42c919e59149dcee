package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/atinyakov/bizcard/internal/models"
	"go.uber.org/zap"
)

// FieldService defines the field catalog operations required by FieldHandler.
type FieldService interface {
	List(ctx context.Context) ([]models.FieldDefinition, error)
	Replace(ctx context.Context, fields []models.FieldDefinition) error
}

// FieldHandler serves the field catalog.
type FieldHandler struct {
	FieldService FieldService
	Log          *zap.Logger
}

// List handles GET /api/fields.
func (h *FieldHandler) List(w http.ResponseWriter, r *http.Request) {
	fields, err := h.FieldService.List(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, fields)
}

// Replace handles POST /api/admin/fields with a JSON array of field definitions.
func (h *FieldHandler) Replace(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var fields []models.FieldDefinition
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil || fields == nil {
		writeError(w, r, h.Log, models.NewValidationError("fields must be an array", ""))
		return
	}

	if err := h.FieldService.Replace(r.Context(), fields); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	logger(h.Log).Info("field catalog replaced", zap.Int("fields", len(fields)))
	writeOK(w, nil)
}
