// Package files sube imágenes al blob store y las sirve por key.
package files

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"path"
	"strings"

	"pawpals/internal/platform/apperr"
	"pawpals/internal/ports/blob"

	"github.com/google/uuid"
)

var (
	ErrEmptyFile   = apperr.Validation("file is required")
	ErrTooLarge    = apperr.Validation("file is too large")
	ErrNotAnImage  = apperr.Validation("only image uploads are allowed")
	ErrFileMissing = apperr.NotFound("file not found")
)

const (
	DefaultMaxBytes = 5 << 20
	keyPrefix       = "uploads"
	urlPrefix       = "/files/"
)

type Service struct {
	store    blob.Store
	maxBytes int64
}

func NewService(store blob.Store, maxBytes int64) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Service{store: store, maxBytes: maxBytes}
}

func (s *Service) MaxBytes() int64 { return s.maxBytes }

// Uploaded es lo que devuelve el endpoint de upload.
type Uploaded struct {
	Key string
	URL string
}

// Upload guarda data bajo uploads/<user>/<uuid><ext>. El content type se detecta del contenido
// cuando el cliente no manda uno de imagen.
func (s *Service) Upload(ctx context.Context, userID, filename, contentType string, data []byte) (Uploaded, error) {
	if len(data) == 0 {
		return Uploaded{}, ErrEmptyFile
	}
	if int64(len(data)) > s.maxBytes {
		return Uploaded{}, ErrTooLarge
	}

	ct := strings.TrimSpace(contentType)
	if !strings.HasPrefix(ct, "image/") {
		ct = http.DetectContentType(data)
	}
	if !strings.HasPrefix(ct, "image/") {
		return Uploaded{}, ErrNotAnImage
	}

	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(ct); len(exts) > 0 {
			ext = exts[0]
		}
	}

	key := path.Join(keyPrefix, userID, uuid.NewString()+ext)
	if err := s.store.Put(ctx, blob.Object{Key: key, ContentType: ct, Data: data}); err != nil {
		return Uploaded{}, err
	}
	return Uploaded{Key: key, URL: urlPrefix + key}, nil
}

func (s *Service) Get(ctx context.Context, key string) (blob.Object, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" || strings.Contains(key, "..") {
		return blob.Object{}, ErrFileMissing
	}
	obj, err := s.store.Get(ctx, key)
	if errors.Is(err, blob.ErrNotFound) {
		return blob.Object{}, ErrFileMissing
	}
	if err != nil {
		return blob.Object{}, err
	}
	if obj.ContentType == "" {
		obj.ContentType = "application/octet-stream"
	}
	return obj, nil
}
