package admin

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
)

// ImageDataURL reads a PNG or JPEG file and encodes it as a base64 data URL.
func ImageDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	mime := http.DetectContentType(data)
	switch mime {
	case "image/png", "image/jpeg":
	default:
		return "", fmt.Errorf("%s: only PNG or JPEG images are accepted (detected %s)", path, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
