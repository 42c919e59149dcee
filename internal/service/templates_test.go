package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atinyakov/bizcard/internal/docstore"
	"github.com/atinyakov/bizcard/internal/models"
	"github.com/atinyakov/bizcard/internal/repository"
	"github.com/atinyakov/bizcard/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRepo wraps a TemplateRepository and counts writes.
type countingRepo struct {
	TemplateRepository
	writes  int
	saveErr error
}

func (c *countingRepo) SaveAll(ctx context.Context, templates []models.Template) error {
	c.writes++
	if c.saveErr != nil {
		return c.saveErr
	}
	return c.TemplateRepository.SaveAll(ctx, templates)
}

type templateFixture struct {
	svc        *TemplateService
	repo       *countingRepo
	uploadsDir string
}

func newTemplateFixture(t *testing.T) *templateFixture {
	t.Helper()
	root := t.TempDir()
	uploadsDir := filepath.Join(root, "uploads")
	repo := &countingRepo{TemplateRepository: repository.NewTemplateRepository(docstore.New(filepath.Join(root, "data")))}
	svc := NewTemplateService(repo, upload.NewAssetStore(uploadsDir, "/uploads"))
	return &templateFixture{svc: svc, repo: repo, uploadsDir: uploadsDir}
}

func (f *templateFixture) uploads(t *testing.T) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(f.uploadsDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	return entries
}

func pngImage(n int) upload.Image {
	return upload.Image{MIME: "image/png", Data: bytes.Repeat([]byte{1}, n)}
}

func TestTemplateService_CreateDefaults(t *testing.T) {
	f := newTemplateFixture(t)
	ctx := context.Background()

	tpl, err := f.svc.Create(ctx, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tpl.ID, "tpl_"), tpl.ID)
	assert.Equal(t, DefaultTemplateName, tpl.Name)
	assert.Equal(t, models.Size{W: 720, H: 400}, tpl.Size)
	assert.Empty(t, tpl.BackgroundURL)
	assert.NotNil(t, tpl.EnabledFields)
	assert.NotNil(t, tpl.Fields)

	name := "Corporate"
	other, err := f.svc.Create(ctx, &name)
	require.NoError(t, err)
	assert.Equal(t, "Corporate", other.Name)
	assert.NotEqual(t, tpl.ID, other.ID)

	all, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, tpl.ID, all[0].ID)
	assert.Equal(t, other.ID, all[1].ID)
}

func TestTemplateService_CreateThenPatchName(t *testing.T) {
	f := newTemplateFixture(t)
	ctx := context.Background()

	tpl, err := f.svc.Create(ctx, nil)
	require.NoError(t, err)

	patch, err := models.ParseTemplatePatch([]byte(`{"name":"X","size":"ignored"}`))
	require.NoError(t, err)
	require.NoError(t, f.svc.Patch(ctx, tpl.ID, patch))

	all, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "X", all[0].Name)
	assert.Equal(t, tpl.Size, all[0].Size)
	assert.Equal(t, tpl.BackgroundURL, all[0].BackgroundURL)
}

func TestTemplateService_PatchUnknownIDWritesNothing(t *testing.T) {
	f := newTemplateFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, nil)
	require.NoError(t, err)
	writes := f.repo.writes

	name := "X"
	err = f.svc.Patch(ctx, "nonexistent", models.TemplatePatch{Name: &name})
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, writes, f.repo.writes)
}

func TestTemplateService_AttachBackground(t *testing.T) {
	f := newTemplateFixture(t)
	ctx := context.Background()

	tpl, err := f.svc.Create(ctx, nil)
	require.NoError(t, err)

	url, err := f.svc.AttachBackground(ctx, tpl.ID, pngImage(upload.MinImageBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"+upload.PrefixBackground), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	all, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, url, all[0].BackgroundURL)
	assert.Len(t, f.uploads(t), 1)
}

func TestTemplateService_AttachBackgroundTooSmall(t *testing.T) {
	f := newTemplateFixture(t)
	ctx := context.Background()

	tpl, err := f.svc.Create(ctx, nil)
	require.NoError(t, err)
	writes := f.repo.writes

	_, err = f.svc.AttachBackground(ctx, tpl.ID, pngImage(upload.MinImageBytes-1))
	assert.ErrorIs(t, err, models.ErrValidation)

	all, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all[0].BackgroundURL)
	assert.Equal(t, writes, f.repo.writes)
	assert.Empty(t, f.uploads(t))
}

func TestTemplateService_AttachBackgroundUnknownID(t *testing.T) {
	f := newTemplateFixture(t)

	_, err := f.svc.AttachBackground(context.Background(), "missing", pngImage(upload.MinImageBytes))
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Empty(t, f.uploads(t))
}

func TestTemplateService_AttachBackgroundSaveFailureRemovesFile(t *testing.T) {
	f := newTemplateFixture(t)
	ctx := context.Background()

	tpl, err := f.svc.Create(ctx, nil)
	require.NoError(t, err)

	f.repo.saveErr = errors.New("disk full")
	_, err = f.svc.AttachBackground(ctx, tpl.ID, pngImage(upload.MinImageBytes))
	assert.Error(t, err)
	assert.Empty(t, f.uploads(t))
}
