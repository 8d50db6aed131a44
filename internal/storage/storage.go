package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrNotFound is returned for a key that holds no file.
var ErrNotFound = errors.New("storage: file not found")

// ErrInvalidKey is returned for keys that are empty or would escape the store.
var ErrInvalidKey = errors.New("storage: invalid key")

// Storage defines the interface for file storage operations.
type Storage interface {
	// Upload stores a file and returns the result with key and URL.
	// An existing file under the same key is replaced.
	Upload(ctx context.Context, input *UploadInput) (*UploadResult, error)

	// Delete removes a file by its key.
	Delete(ctx context.Context, key string) error

	// GetURL returns the public URL for the given key.
	GetURL(ctx context.Context, key string) (string, error)
}

// UploadInput holds the parameters for uploading a file.
type UploadInput struct {
	Key         string
	ContentType string
	Size        int64
	Data        io.Reader
}

// UploadResult holds the result of a successful upload.
type UploadResult struct {
	Key string
	URL string
}

// ValidateKey rejects keys that are empty or contain path elements.
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return ErrInvalidKey
	}
	return nil
}

// JoinURL appends key to base with exactly one slash between them.
func JoinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
