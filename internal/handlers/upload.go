package handlers

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crowdfund-platform/internal/documents"
	"crowdfund-platform/internal/models"
)

type DocumentService interface {
	Store(ctx context.Context, uploads []documents.Upload) ([]models.Document, error)
	MaxBytes() int64
}

type UploadHandler struct {
	Documents DocumentService
	Log       *zap.Logger
}

func NewUploadHandler(svc DocumentService, log *zap.Logger) *UploadHandler {
	return &UploadHandler{Documents: svc, Log: log}
}

// Upload accepts a multipart form with one or more "documents" files. An
// optional "type" value applies to every file, or one value per file in order.
func (h *UploadHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, err)
		return
	}

	files := form.File["documents"]
	types := form.Value["type"]
	if len(types) > 1 && len(types) != len(files) {
		respondError(c, h.Log, models.NewValidationError("type", "Provide one document type, or one per file"))
		return
	}

	uploads := make([]documents.Upload, 0, len(files))
	for i, fh := range files {
		data, err := h.read(fh)
		if err != nil {
			respondError(c, h.Log, err)
			return
		}

		var docType models.DocumentType
		switch {
		case len(types) == 1:
			docType = models.DocumentType(types[0])
		case len(types) > 1:
			docType = models.DocumentType(types[i])
		}
		uploads = append(uploads, documents.Upload{Name: fh.Filename, Type: docType, Data: data})
	}

	docs, err := h.Documents.Store(c.Request.Context(), uploads)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"documents": docs})
}

// read loads at most one byte more than the limit so that the service can
// reject oversized files without buffering them whole.
func (h *UploadHandler) read(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.Documents.MaxBytes()+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return data, nil
}
