// Package files accepts admin image uploads and stores them in the blob store.
package files

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/folio-space/folio/internal/backend"
	"github.com/folio-space/folio/internal/backend/blob"
	"github.com/folio-space/folio/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// FormField is the multipart field carrying the file.
const FormField = "file"

// Uploader stores images under uploads/ and returns their public URL.
type Uploader struct {
	store    backend.BlobStore
	maxBytes int64
}

func NewUploader(store backend.BlobStore, maxBytes int64) *Uploader {
	return &Uploader{store: store, maxBytes: maxBytes}
}

// Save stores one multipart file.
func (u *Uploader) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if err := blob.ValidateImage(fh.Filename, fh.Size, u.maxBytes); err != nil {
		return "", err
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return blob.SaveImage(ctx, u.store, fh.Filename, f, fh.Size, u.maxBytes)
}

// IsClientError reports whether err was caused by the uploaded file itself.
func IsClientError(err error) bool {
	return errors.Is(err, blob.ErrUnsupportedFormat) ||
		errors.Is(err, blob.ErrTooLarge) ||
		errors.Is(err, blob.ErrEmptyFile)
}

type Handler struct {
	uploader *Uploader
}

func NewHandler(uploader *Uploader) *Handler { return &Handler{uploader: uploader} }

func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.POST("/files/upload", h.upload)
}

type uploadResponse struct {
	URL string `json:"url"`
}

func (h *Handler) upload(c *gin.Context) {
	fh, err := c.FormFile(FormField)
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	url, err := h.uploader.Save(c.Request.Context(), fh)
	switch {
	case errors.Is(err, blob.ErrTooLarge):
		response.TooLarge(c, err.Error())
	case IsClientError(err):
		response.BadRequest(c, err.Error())
	case err != nil:
		response.InternalError(c, err)
	default:
		response.Created(c, uploadResponse{URL: url})
	}
}
