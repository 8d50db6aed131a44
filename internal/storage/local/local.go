// Package local stores uploads on the local filesystem and serves them over HTTP.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/utafrali/devcamper/internal/storage"
)

// Storage implements storage.Storage on a directory.
type Storage struct {
	dir     string
	baseURL string
}

// New creates the upload directory if needed. URLs are baseURL/<key>.
func New(dir, baseURL string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &Storage{dir: dir, baseURL: baseURL}, nil
}

// Upload writes the file through a temporary name so readers never see a partial photo.
func (s *Storage) Upload(ctx context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	if err := storage.ValidateKey(input.Key); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, readerWithContext(ctx, input.Data)); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("write %s: %w", input.Key, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %w", input.Key, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return nil, fmt.Errorf("chmod %s: %w", input.Key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(input.Key)); err != nil {
		return nil, fmt.Errorf("move %s into place: %w", input.Key, err)
	}

	return &storage.UploadResult{Key: input.Key, URL: storage.JoinURL(s.baseURL, input.Key)}, nil
}

// Delete removes a stored file.
func (s *Storage) Delete(_ context.Context, key string) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if err := os.Remove(s.path(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", storage.ErrNotFound, key)
		}
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// GetURL returns the public URL of a stored file.
func (s *Storage) GetURL(_ context.Context, key string) (string, error) {
	if err := storage.ValidateKey(key); err != nil {
		return "", err
	}
	if _, err := os.Stat(s.path(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", storage.ErrNotFound, key)
		}
		return "", fmt.Errorf("stat %s: %w", key, err)
	}
	return storage.JoinURL(s.baseURL, key), nil
}

// Handler serves stored files by name. Directory listings and dot files are not served.
func (s *Storage) Handler() http.Handler {
	files := http.FileServer(http.Dir(s.dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if storage.ValidateKey(name) != nil || strings.HasPrefix(name, ".") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

func (s *Storage) path(key string) string {
	return filepath.Join(s.dir, key)
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// readerWithContext stops a copy once ctx is done.
func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return ctxReader{ctx: ctx, r: r}
}
