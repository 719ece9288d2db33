// Package documents turns uploaded files into addressable URLs.
package documents

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"crowdfund-platform/internal/models"
)

// Store is the backend that keeps the bytes.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Upload is one file received from a client.
type Upload struct {
	Name string
	Type models.DocumentType
	Data []byte
}

var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

const maxFilesPerUpload = 10

// Service checks uploads and hands them to a Store.
type Service struct {
	store    Store
	maxBytes int64
	log      *zap.Logger
	now      func() time.Time
}

func NewService(store Store, maxBytes int64, log *zap.Logger) *Service {
	return &Service{store: store, maxBytes: maxBytes, log: log, now: time.Now}
}

// MaxBytes is the size limit for a single file.
func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// Store checks every file first and only writes when the whole batch is acceptable.
func (s *Service) Store(ctx context.Context, uploads []Upload) ([]models.Document, error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: no files received", models.ErrUploadRejected)
	}
	if len(uploads) > maxFilesPerUpload {
		return nil, fmt.Errorf("%w: at most %d files per upload", models.ErrUploadRejected, maxFilesPerUpload)
	}

	contentTypes := make([]string, len(uploads))
	for i, u := range uploads {
		ct, err := s.check(u)
		if err != nil {
			return nil, err
		}
		contentTypes[i] = ct
	}

	docs := make([]models.Document, 0, len(uploads))
	for i, u := range uploads {
		ct := contentTypes[i]
		key := "documents/" + uuid.NewString() + allowedTypes[ct]

		url, err := s.store.Put(ctx, key, ct, u.Data)
		if err != nil {
			s.log.Error("document upload failed", zap.String("name", u.Name), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", models.ErrUploadFailure, err)
		}

		docType := u.Type
		if docType == "" {
			docType = models.DocumentOther
		}
		docs = append(docs, models.Document{
			Type:       docType,
			URL:        url,
			Name:       path.Base(strings.ReplaceAll(u.Name, "\\", "/")),
			UploadedAt: s.now().UTC(),
		})
	}

	s.log.Info("documents stored", zap.Int("count", len(docs)))
	return docs, nil
}

func (s *Service) check(u Upload) (string, error) {
	if len(u.Data) == 0 {
		return "", fmt.Errorf("%w: %s is empty", models.ErrUploadRejected, u.Name)
	}
	if int64(len(u.Data)) > s.maxBytes {
		return "", fmt.Errorf("%w: %s is too large, maximum size is %d bytes", models.ErrUploadRejected, u.Name, s.maxBytes)
	}
	if u.Type != "" && !u.Type.Valid() {
		return "", fmt.Errorf("%w: unknown document type %q", models.ErrUploadRejected, u.Type)
	}

	// Trust the bytes, not the client supplied name or header
	detected := mimetype.Detect(u.Data)
	for ct := range allowedTypes {
		if detected.Is(ct) {
			return ct, nil
		}
	}
	return "", fmt.Errorf("%w: %s is not a valid file type, upload images or PDFs", models.ErrUploadRejected, u.Name)
}
