package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/atinyakov/bizcard/internal/models"
	"github.com/atinyakov/bizcard/internal/upload"
	"github.com/oklog/ulid/v2"
)

// Defaults applied to newly created templates.
const (
	DefaultTemplateName   = "New Template"
	DefaultTemplateWidth  = 720
	DefaultTemplateHeight = 400
)

// TemplateRepository defines the persistence operations required by TemplateService.
type TemplateRepository interface {
	// List returns all templates in creation order.
	List(ctx context.Context) ([]models.Template, error)
	// SaveAll replaces all stored templates.
	SaveAll(ctx context.Context, templates []models.Template) error
}

// AssetStore stores uploaded images and returns their public URLs.
type AssetStore interface {
	// Save writes img under a generated name starting with prefix.
	Save(ctx context.Context, prefix string, img upload.Image) (string, error)
	// Remove deletes an asset previously returned by Save.
	Remove(url string) error
}

// TemplateService manages card templates.
type TemplateService struct {
	repo   TemplateRepository
	assets AssetStore
	newID  func() string
	// mu serializes read-modify-write cycles made by this process.
	mu sync.Mutex
}

// NewTemplateService constructs a TemplateService.
func NewTemplateService(repo TemplateRepository, assets AssetStore) *TemplateService {
	return &TemplateService{
		repo:   repo,
		assets: assets,
		newID: func() string {
			return "tpl_" + ulid.Make().String()
		},
	}
}

// List returns all templates.
func (s *TemplateService) List(ctx context.Context) ([]models.Template, error) {
	return s.repo.List(ctx)
}

// Create appends a new template with default size and no background.
// A nil name falls back to DefaultTemplateName.
func (s *TemplateService) Create(ctx context.Context, name *string) (models.Template, error) {
	tpl := models.Template{
		ID:            s.newID(),
		Name:          DefaultTemplateName,
		Size:          models.Size{W: DefaultTemplateWidth, H: DefaultTemplateHeight},
		EnabledFields: []string{},
		Fields:        map[string]json.RawMessage{},
	}
	if name != nil {
		tpl.Name = *name
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	templates, err := s.repo.List(ctx)
	if err != nil {
		return models.Template{}, err
	}
	if err := s.repo.SaveAll(ctx, append(templates, tpl)); err != nil {
		return models.Template{}, err
	}
	return tpl, nil
}

// Patch applies patch to the template id. Unknown ids fail with models.ErrNotFound
// and nothing is written.
func (s *TemplateService) Patch(ctx context.Context, id string, patch models.TemplatePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	templates, i, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	patch.Apply(&templates[i])
	return s.repo.SaveAll(ctx, templates)
}

// AttachBackground stores img as the background of template id and returns its URL.
// Images smaller than upload.MinImageBytes are rejected before anything is written.
func (s *TemplateService) AttachBackground(ctx context.Context, id string, img upload.Image) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	templates, i, err := s.find(ctx, id)
	if err != nil {
		return "", err
	}
	if err := upload.CheckPlausible(img); err != nil {
		return "", err
	}

	url, err := s.assets.Save(ctx, upload.PrefixBackground, img)
	if err != nil {
		return "", err
	}

	templates[i].BackgroundURL = url
	if err := s.repo.SaveAll(ctx, templates); err != nil {
		_ = s.assets.Remove(url)
		return "", err
	}
	return url, nil
}

func (s *TemplateService) find(ctx context.Context, id string) ([]models.Template, int, error) {
	templates, err := s.repo.List(ctx)
	if err != nil {
		return nil, -1, err
	}
	for i := range templates {
		if templates[i].ID == id {
			return templates, i, nil
		}
	}
	return nil, -1, fmt.Errorf("template %q: %w", id, models.ErrNotFound)
}
