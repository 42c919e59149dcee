package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/atinyakov/bizcard/internal/models"
	"github.com/atinyakov/bizcard/internal/upload"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TemplateService defines the template operations required by TemplateHandler.
type TemplateService interface {
	List(ctx context.Context) ([]models.Template, error)
	Create(ctx context.Context, name *string) (models.Template, error)
	Patch(ctx context.Context, id string, patch models.TemplatePatch) error
	AttachBackground(ctx context.Context, id string, img upload.Image) (string, error)
}

// TemplateHandler serves card templates.
type TemplateHandler struct {
	TemplateService TemplateService
	Log             *zap.Logger
}

// DataURLRequest carries a base64 image data URL.
type DataURLRequest struct {
	DataURL string `json:"dataUrl" validate:"required"`
}

// List handles GET /api/templates.
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.TemplateService.List(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

// Create handles POST /api/admin/templates. The body is optional; a "name"
// that is missing, null or not a string yields the default name, as does a
// JSON body that is not an object.
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	name, err := templateName(raw)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	tpl, err := h.TemplateService.Create(r.Context(), name)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	logger(h.Log).Info("template created", zap.String("id", tpl.ID))
	writeJSON(w, http.StatusOK, tpl)
}

// Patch handles POST /api/admin/templates/{id} with a partial template.
func (h *TemplateHandler) Patch(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	patch, err := models.ParseTemplatePatch(raw)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	if err := h.TemplateService.Patch(r.Context(), chi.URLParam(r, "id"), patch); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeOK(w, nil)
}

// UploadBackground handles POST /api/admin/templates/{id}/upload with
// {"dataUrl": "data:image/png;base64,..."} and responds with the stored URL.
func (h *TemplateHandler) UploadBackground(w http.ResponseWriter, r *http.Request) {
	var req DataURLRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	img, err := upload.DecodeDataURL(req.DataURL)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	id := chi.URLParam(r, "id")
	url, err := h.TemplateService.AttachBackground(r.Context(), id, img)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	logger(h.Log).Info("template background uploaded", zap.String("id", id), zap.String("url", url))
	writeOK(w, map[string]any{"url": url})
}

// templateName returns the string "name" of a create request body, or nil
// when the default name applies. Only malformed JSON is an error.
func templateName(raw []byte) (*string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, models.NewValidationError("invalid request", "")
	}

	var body map[string]json.RawMessage
	if json.Unmarshal(raw, &body) != nil {
		return nil, nil
	}
	value, ok := body["name"]
	if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
		return nil, nil
	}
	var name string
	if json.Unmarshal(value, &name) != nil {
		return nil, nil
	}
	return &name, nil
}
