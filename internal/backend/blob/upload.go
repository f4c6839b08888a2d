package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/folio-space/folio/internal/backend"
	"github.com/google/uuid"
)

// UploadDir is the key prefix every admin image is stored under.
const UploadDir = "uploads"

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrTooLarge          = errors.New("file too large")
	ErrEmptyFile         = errors.New("empty file")
)

// ImageExtensions lists the accepted upload extensions.
var ImageExtensions = []string{".jpeg", ".jpg", ".png", ".gif", ".webp"}

// ValidateImage checks the file name extension and size against the policy.
func ValidateImage(filename string, size, maxBytes int64) error {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	allowed := false
	for _, e := range ImageExtensions {
		if e == ext {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if maxBytes > 0 && size > maxBytes {
		return fmt.Errorf("%w: limit is %dMB", ErrTooLarge, maxBytes>>20)
	}
	return nil
}

// SaveImage validates and stores an uploaded image under uploads/<random>.<ext>
// and returns its public URL. The stored content type comes from the bytes,
// never from the client.
func SaveImage(ctx context.Context, store backend.BlobStore, filename string, r io.Reader, size int64, maxBytes int64) (string, error) {
	if err := ValidateImage(filename, size, maxBytes); err != nil {
		return "", err
	}

	limit := maxBytes
	if limit <= 0 {
		limit = size
	}
	payload, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(payload) == 0 {
		return "", ErrEmptyFile
	}
	if maxBytes > 0 && int64(len(payload)) > maxBytes {
		return "", fmt.Errorf("%w: limit is %dMB", ErrTooLarge, maxBytes>>20)
	}

	ct, err := sniffImageType(payload)
	if err != nil {
		return "", err
	}
	key := UploadDir + "/" + buildFileName(filename)
	if err := store.Upload(ctx, key, bytes.NewReader(payload), int64(len(payload)), ct); err != nil {
		return "", err
	}
	return store.PublicURL(key), nil
}

// buildFileName generates a collision-resistant filename that preserves the
// original extension.
func buildFileName(original string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(original)))
	if ext == "" || len(ext) > 10 {
		ext = ".dat"
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:18] + ext
}

// sniffImageType returns the payload's detected MIME type, which must be an
// image.
func sniffImageType(payload []byte) (string, error) {
	ct := http.DetectContentType(payload)
	if !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("%w: content is %s", ErrUnsupportedFormat, ct)
	}
	return ct, nil
}
