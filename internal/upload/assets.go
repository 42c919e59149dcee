package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/atinyakov/bizcard/internal/models"
	"github.com/google/uuid"
)

// Filename prefixes of generated assets.
const (
	PrefixPreview    = "preview_"
	PrefixBackground = "tpl_bg_"
)

// generatedName matches names produced by AssetStore.Save.
var generatedName = regexp.MustCompile(`^[a-z_]+\d+_[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.(png|jpg)$`)

// AssetStore writes uploaded images to Dir and exposes them under URLPrefix.
type AssetStore struct {
	Dir       string
	URLPrefix string
	now       func() time.Time
}

// NewAssetStore creates an AssetStore. urlPrefix is the public path Dir is served at.
func NewAssetStore(dir, urlPrefix string) *AssetStore {
	return &AssetStore{
		Dir:       dir,
		URLPrefix: "/" + strings.Trim(urlPrefix, "/"),
		now:       time.Now,
	}
}

// Save writes img under a generated collision-resistant name and returns its public URL.
func (s *AssetStore) Save(ctx context.Context, prefix string, img Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}

	name := fmt.Sprintf("%s%d_%s%s", prefix, s.now().UnixMilli(), uuid.NewString(), img.Ext())
	if err := os.WriteFile(filepath.Join(s.Dir, name), img.Data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path.Join(s.URLPrefix, name), nil
}

// Remove deletes a previously saved asset by its public URL. Unknown URLs are ignored.
func (s *AssetStore) Remove(url string) error {
	name, err := s.resolve(url)
	if err != nil {
		return nil
	}
	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Open reads a previously saved asset by its public URL. Only names generated
// by Save are accepted.
func (s *AssetStore) Open(url string) (Image, string, error) {
	name, err := s.resolve(url)
	if err != nil {
		return Image{}, "", err
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Image{}, "", models.ErrNotFound
		}
		return Image{}, "", fmt.Errorf("read upload: %w", err)
	}
	mime := "image/png"
	if strings.HasSuffix(name, ".jpg") {
		mime = "image/jpeg"
	}
	return Image{MIME: mime, Data: data}, name, nil
}

func (s *AssetStore) resolve(url string) (string, error) {
	name, ok := strings.CutPrefix(url, s.URLPrefix+"/")
	if !ok || !generatedName.MatchString(name) {
		return "", models.NewValidationError("unknown upload", url)
	}
	return name, nil
}
