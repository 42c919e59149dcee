package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atinyakov/bizcard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func TestDecodeDataURL(t *testing.T) {
	payload := []byte("\x89PNG fake image bytes")

	tests := []struct {
		name     string
		in       string
		wantMIME string
		wantErr  bool
	}{
		{name: "png", in: dataURL("image/png", payload), wantMIME: "image/png"},
		{name: "jpeg", in: dataURL("image/jpeg", payload), wantMIME: "image/jpeg"},
		{name: "jpg alias", in: dataURL("image/jpg", payload), wantMIME: "image/jpeg"},
		{name: "upper case mime", in: dataURL("IMAGE/PNG", payload), wantMIME: "image/png"},
		{name: "gif rejected", in: dataURL("image/gif", payload), wantErr: true},
		{name: "svg rejected", in: dataURL("image/svg+xml", payload), wantErr: true},
		{name: "not base64 encoded", in: "data:image/png," + string(payload), wantErr: true},
		{name: "broken base64", in: "data:image/png;base64,@@@", wantErr: true},
		{name: "no scheme", in: "image/png;base64,AAAA", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeDataURL(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMIME, img.MIME)
			assert.Equal(t, payload, img.Data)
		})
	}
}

func TestImageExt(t *testing.T) {
	assert.Equal(t, ".png", Image{MIME: "image/png"}.Ext())
	assert.Equal(t, ".jpg", Image{MIME: "image/jpeg"}.Ext())
}

func TestCheckPlausible(t *testing.T) {
	assert.ErrorIs(t, CheckPlausible(Image{Data: make([]byte, MinImageBytes-1)}), models.ErrValidation)
	assert.NoError(t, CheckPlausible(Image{Data: make([]byte, MinImageBytes)}))
}

func TestAssetStore_SaveOpenRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store := NewAssetStore(dir, "uploads/")
	ctx := context.Background()

	img := Image{MIME: "image/jpeg", Data: bytes.Repeat([]byte{0xff}, MinImageBytes)}
	url, err := store.Save(ctx, PrefixBackground, img)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"+PrefixBackground), url)
	assert.True(t, strings.HasSuffix(url, ".jpg"), url)

	other, err := store.Save(ctx, PrefixBackground, img)
	require.NoError(t, err)
	assert.NotEqual(t, url, other)

	got, name, err := store.Open(url)
	require.NoError(t, err)
	assert.Equal(t, img, got)
	assert.Equal(t, strings.TrimPrefix(url, "/uploads/"), name)

	require.NoError(t, store.Remove(url))
	_, _, err = store.Open(url)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAssetStore_OpenRejectsForeignNames(t *testing.T) {
	dir := t.TempDir()
	store := NewAssetStore(dir, "/uploads")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.txt"), []byte("x"), 0o644))

	for _, url := range []string{
		"/uploads/secret.txt",
		"/uploads/../fields.json",
		"/elsewhere/preview_1_00000000-0000-0000-0000-000000000000.png",
		"",
	} {
		_, _, err := store.Open(url)
		assert.ErrorIs(t, err, models.ErrValidation, url)
	}
}
