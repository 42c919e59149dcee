package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/atinyakov/bizcard/internal/docstore"
	"github.com/atinyakov/bizcard/internal/models"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// maxJSONBody bounds JSON request bodies; data URLs of card backgrounds fit well below it.
const maxJSONBody = 16 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// decodeRequest decodes a JSON body into dst and validates it.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return models.NewValidationError("invalid request", "")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return models.NewValidationError(fmt.Sprintf("%s is %s", verrs[0].Field(), verrs[0].Tag()), "")
		}
		return models.NewValidationError("invalid request", "")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeOK writes {"ok":true} merged with extra.
func writeOK(w http.ResponseWriter, extra map[string]any) {
	body := map[string]any{"ok": true}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{OK: false, Error: message})
}

// writeError converts err into a status code and the {"ok":false,"error":...} envelope.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var (
		verr  *models.ValidationError
		ferr  *models.FormatError
		aerr  *models.AuthError
		cerr  *models.ConfigurationError
		terr  *models.TransportError
		perr  *docstore.ParseError
		mberr *http.MaxBytesError
	)

	switch {
	case errors.As(err, &verr):
		writeErrorMessage(w, http.StatusBadRequest, verr.Error())
	case errors.As(err, &ferr):
		writeErrorMessage(w, http.StatusBadRequest, ferr.Error())
	case errors.As(err, &mberr):
		writeErrorMessage(w, http.StatusRequestEntityTooLarge, "request too large")
	case errors.Is(err, models.ErrInvalidCredentials):
		writeErrorMessage(w, http.StatusUnauthorized, "invalid credentials")
	case errors.As(err, &aerr):
		writeErrorMessage(w, http.StatusUnauthorized, aerr.Error())
	case errors.Is(err, models.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, "not found")
	case errors.As(err, &cerr):
		logger(log).Error("missing configuration", zap.Strings("missing", cerr.Missing), zap.String("path", r.URL.Path))
		writeErrorMessage(w, http.StatusInternalServerError, cerr.Error())
	case errors.As(err, &terr):
		writeErrorMessage(w, http.StatusInternalServerError, terr.Error())
	case errors.As(err, &perr):
		logger(log).Error("stored document is corrupt", zap.Error(err), zap.String("document", perr.Name))
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	default:
		logger(log).Error("request failed", zap.Error(err), zap.String("path", r.URL.Path))
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}

// writeAuthError is used by the admin auth middleware.
func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, nil, err)
}

func logger(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
