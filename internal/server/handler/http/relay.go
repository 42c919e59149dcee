package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/atinyakov/bizcard/internal/models"
	"github.com/atinyakov/bizcard/internal/upload"
	"go.uber.org/zap"
)

// RelayService defines the relay operations required by RelayHandler.
type RelayService interface {
	Relay(ctx context.Context, artifact models.Artifact, meta map[string]string) (json.RawMessage, error)
	TestEmail(ctx context.Context) (json.RawMessage, error)
}

// AssetStore stores preview images and reads them back for relaying.
type AssetStore interface {
	Save(ctx context.Context, prefix string, img upload.Image) (string, error)
	Open(url string) (upload.Image, string, error)
}

// RelayHandler accepts finished cards from end users and forwards them to
// the administrator.
type RelayHandler struct {
	RelayService RelayService
	Assets       AssetStore
	// MaxUploadBytes bounds the uploaded file. The request body may exceed it
	// by multipartOverhead.
	MaxUploadBytes int64
	Log            *zap.Logger
}

// Form fields of POST /api/save.
const (
	formFieldPDF        = "pdf"
	formFieldPreviewURL = "previewUrl"
)

// multipartOverhead is the room left for part headers, boundaries and the
// other form values next to the file itself.
const multipartOverhead = 1 << 20

// UploadPreview handles POST /api/upload-preview with {"dataUrl": ...}.
// It stores the image and responds with its public URL.
func (h *RelayHandler) UploadPreview(w http.ResponseWriter, r *http.Request) {
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
	if err := upload.CheckPlausible(img); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	url, err := h.Assets.Save(r.Context(), upload.PrefixPreview, img)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeOK(w, map[string]any{"url": url})
}

// Save handles POST /api/save. The card is either a multipart file in the
// "pdf" field or the URL of an earlier preview upload in "previewUrl".
// Remaining form values are passed on as metadata.
func (h *RelayHandler) Save(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var mberr *http.MaxBytesError
		if errors.As(err, &mberr) {
			writeError(w, r, h.Log, err)
			return
		}
		writeError(w, r, h.Log, models.NewValidationError("invalid form", ""))
		return
	}

	artifact, err := h.artifact(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	data, err := h.RelayService.Relay(r.Context(), artifact, formMeta(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeOK(w, map[string]any{"data": data})
}

// TestEmail handles GET /api/admin/test-email by sending a test message.
func (h *RelayHandler) TestEmail(w http.ResponseWriter, r *http.Request) {
	data, err := h.RelayService.TestEmail(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeOK(w, map[string]any{"data": data})
}

func (h *RelayHandler) artifact(r *http.Request) (models.Artifact, error) {
	file, header, err := r.FormFile(formFieldPDF)
	if err == nil {
		defer file.Close()
		if header.Size > h.MaxUploadBytes {
			return models.Artifact{}, &http.MaxBytesError{Limit: h.MaxUploadBytes}
		}
		content, err := io.ReadAll(file)
		if err != nil {
			return models.Artifact{}, err
		}
		if len(content) == 0 {
			return models.Artifact{}, models.NewValidationError("pdf missing", "")
		}
		return models.Artifact{
			Kind:        models.ArtifactPDF,
			Filename:    header.Filename,
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	}

	if previewURL := r.FormValue(formFieldPreviewURL); previewURL != "" {
		img, name, err := h.Assets.Open(previewURL)
		if err != nil {
			return models.Artifact{}, err
		}
		return models.Artifact{
			Kind:        models.ArtifactImage,
			Filename:    name,
			ContentType: img.MIME,
			Content:     img.Data,
		}, nil
	}

	return models.Artifact{}, models.NewValidationError("pdf missing", "")
}

// formMeta collects the first value of every non-file form field except previewUrl.
func formMeta(r *http.Request) map[string]string {
	meta := make(map[string]string, len(r.Form))
	for k, v := range r.Form {
		if k == formFieldPreviewURL || len(v) == 0 {
			continue
		}
		meta[k] = v[0]
	}
	return meta
}
