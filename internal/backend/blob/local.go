package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/folio-space/folio/internal/backend"
)

// Local stores blobs under a directory that the HTTP server exposes at base.
type Local struct {
	dir  string
	base string
}

var _ backend.BlobStore = (*Local)(nil)

// NewLocal returns a store rooted at dir. base is the URL prefix the
// directory is served from; empty means the site root.
func NewLocal(dir, base string) *Local {
	return &Local{dir: dir, base: base}
}

func (l *Local) Dir() string { return l.dir }

func (l *Local) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	key := normalizeObjectKey(path)
	if !validKey(key) {
		return fmt.Errorf("local upload %q: %w", path, errInvalidKey)
	}
	target := filepath.Join(l.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("local upload: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("local upload: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("local upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("local upload: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("local upload: %w", err)
	}
	return nil
}

func (l *Local) PublicURL(path string) string {
	return l.base + joinURLPath(encodeObjectKey(path))
}
