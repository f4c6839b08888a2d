package blob

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/folio-space/folio/internal/config"
)

func TestValidateImage(t *testing.T) {
	cases := []struct {
		name string
		size int64
		want error
	}{
		{"photo.PNG", 100, nil},
		{"photo.webp", 100, nil},
		{"photo.jpeg", 100, nil},
		{"doc.pdf", 100, ErrUnsupportedFormat},
		{"noext", 100, ErrUnsupportedFormat},
		{"big.jpg", 11 << 20, ErrTooLarge},
	}
	for _, tc := range cases {
		err := ValidateImage(tc.name, tc.size, 10<<20)
		if tc.want == nil && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestSaveImageLocal(t *testing.T) {
	dir := t.TempDir()
	store := NewLocal(dir, "")

	payload := []byte("\x89PNG\r\n\x1a\nfake")
	url, err := SaveImage(context.Background(), store, "Avatar.png", bytes.NewReader(payload), int64(len(payload)), 10<<20)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("url = %q", url)
	}

	onDisk := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(url, "/")))
	got, err := os.ReadFile(onDisk)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestSaveImageRejectsOversizedBody(t *testing.T) {
	store := NewLocal(t.TempDir(), "")
	body := bytes.Repeat([]byte("x"), 2048)
	// The declared size lies; the body read is what counts.
	_, err := SaveImage(context.Background(), store, "a.gif", bytes.NewReader(body), 10, 1024)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
}

func TestSaveImageSniffsPayload(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		payload  []byte
		wantErr  bool
	}{
		{"png bytes", "a.png", []byte("\x89PNG\r\n\x1a\n\x00\x00"), false},
		{"gif under jpg name", "a.jpg", []byte("GIF89a\x01\x00"), false},
		{"html under png name", "a.png", []byte("<!DOCTYPE html><script>alert(1)</script>"), true},
		{"plain text", "a.webp", []byte("hello"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			_, err := SaveImage(context.Background(), NewLocal(dir, ""), tc.filename, bytes.NewReader(tc.payload), int64(len(tc.payload)), 1024)
			if tc.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
				}
				entries, _ := os.ReadDir(filepath.Join(dir, UploadDir))
				if len(entries) != 0 {
					t.Fatalf("rejected upload stored %d files", len(entries))
				}
				return
			}
			if err != nil {
				t.Fatalf("save: %v", err)
			}
		})
	}
}

func TestLocalRejectsTraversal(t *testing.T) {
	store := NewLocal(t.TempDir(), "")
	err := store.Upload(context.Background(), "../escape.png", strings.NewReader("x"), 1, "image/png")
	if !errors.Is(err, errInvalidKey) {
		t.Fatalf("err = %v, want errInvalidKey", err)
	}
}

func TestS3PublicURL(t *testing.T) {
	base := config.S3Config{Region: "auto", Bucket: "media", AccessKeyID: "ak", SecretAccessKey: "sk"}

	cases := []struct {
		name string
		mod  func(*config.S3Config)
		want string
	}{
		{"custom domain", func(c *config.S3Config) { c.CustomDomain = "https://cdn.example.com" }, "https://cdn.example.com/uploads/a.png"},
		{"custom endpoint is path style", func(c *config.S3Config) { c.Endpoint = "https://acc.r2.example.com" }, "https://acc.r2.example.com/media/uploads/a.png"},
		{"aws virtual host", func(c *config.S3Config) { c.Region = "eu-west-1" }, "https://media.s3.eu-west-1.amazonaws.com/uploads/a.png"},
		{"prefix", func(c *config.S3Config) { c.CustomDomain = "https://cdn.example.com"; c.Prefix = "site" }, "https://cdn.example.com/site/uploads/a.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := base
			tc.mod(&opts)
			s, err := NewS3(opts)
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			if got := s.PublicURL("uploads/a.png"); got != tc.want {
				t.Fatalf("url = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewS3RequiresCredentials(t *testing.T) {
	if _, err := NewS3(config.S3Config{Bucket: "b", Region: "auto"}); err == nil {
		t.Fatal("expected error")
	}
}
