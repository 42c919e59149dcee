// Package upload decodes image payloads sent by the card editor and stores
// them under the web-servable uploads directory.
package upload

import (
	"encoding/base64"
	"strings"

	"github.com/atinyakov/bizcard/internal/models"
)

// MinImageBytes is the smallest payload accepted as a real captured image.
// Smaller payloads are almost always blank or truncated canvas exports.
const MinImageBytes = 2000

// Image is a decoded image payload.
type Image struct {
	// MIME is "image/png" or "image/jpeg".
	MIME string
	Data []byte
}

// Ext returns the file extension for the image kind.
func (i Image) Ext() string {
	if i.MIME == "image/jpeg" {
		return ".jpg"
	}
	return ".png"
}

var allowedMIME = map[string]string{
	"image/png":  "image/png",
	"image/jpeg": "image/jpeg",
	"image/jpg":  "image/jpeg",
}

// DecodeDataURL parses a base64 "data:image/png" or "data:image/jpeg" URL.
// Anything else yields a *models.FormatError.
func DecodeDataURL(s string) (Image, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "data:")
	if !ok {
		return Image{}, &models.FormatError{Reason: "invalid dataUrl"}
	}

	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, &models.FormatError{Reason: "invalid dataUrl"}
	}

	mediaType, encoding, ok := strings.Cut(header, ";")
	if !ok || !strings.EqualFold(encoding, "base64") {
		return Image{}, &models.FormatError{Reason: "dataUrl must be base64 encoded"}
	}

	mime, ok := allowedMIME[strings.ToLower(mediaType)]
	if !ok {
		return Image{}, &models.FormatError{Reason: "only image/png or image/jpeg is allowed"}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, &models.FormatError{Reason: "invalid base64 payload"}
	}

	return Image{MIME: mime, Data: data}, nil
}

// CheckPlausible rejects images too small to be a real capture.
func CheckPlausible(img Image) error {
	if len(img.Data) < MinImageBytes {
		return models.NewValidationError("image too small", "")
	}
	return nil
}
