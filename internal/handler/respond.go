package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"vidtube/pkg/errors"
	"vidtube/pkg/logger"
)

// APIResponse is the success envelope. Status mirrors the transport status.
type APIResponse struct {
	Status  int         `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
}

// APIErrorResponse is the error envelope
type APIErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// respondJSON writes a success envelope
func respondJSON(w http.ResponseWriter, status int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Status:  status,
		Data:    data,
		Message: message,
	})
}

// respondError converts err to the error envelope. Internal errors are logged
// with their cause but only a generic message leaves the process.
func respondError(w http.ResponseWriter, log *logger.Logger, err error) {
	appErr := errors.FromError(err)

	if appErr.Type == errors.ErrorTypeInternal {
		log.WithError(appErr).Error("Request failed")
	} else {
		log.WithError(appErr).Debug("Request rejected")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	_ = json.NewEncoder(w).Encode(APIErrorResponse{
		Status:  appErr.StatusCode,
		Message: appErr.Message,
	})
}

// maxUploadSize bounds multipart memory buffering; larger parts spill to disk
const maxUploadSize = 32 << 20

// saveUploadedFile writes the named multipart file to a temp path so the
// storage layer can stream it. cleanup removes the temp file and must always
// be called; it is safe when no file was present (path == "").
func saveUploadedFile(r *http.Request, field string) (path string, cleanup func(), err error) {
	cleanup = func() {}

	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return "", cleanup, nil
		}
		return "", cleanup, errors.NewValidationError(fmt.Sprintf("Invalid %s upload", field))
	}
	defer file.Close()

	path, err = persistUpload(file, header)
	if err != nil {
		return "", cleanup, errors.NewInternalError("Could not store upload", err)
	}

	return path, func() { _ = os.Remove(path) }, nil
}

func persistUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}

	return tmp.Name(), nil
}

// Token cookies: httpOnly + secure, never readable from scripts. The access
// cookie and refresh cookie are independent opaque values.

const refreshTokenCookie = "refresh_token"

func setTokenCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearTokenCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
