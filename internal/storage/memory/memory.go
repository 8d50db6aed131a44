package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/utafrali/devcamper/internal/storage"
)

// File is a stored upload.
type File struct {
	Key         string
	ContentType string
	Data        []byte
	URL         string
}

// Storage implements storage.Storage in process memory. It backs tests and
// the "memory" storage driver.
type Storage struct {
	mu      sync.RWMutex
	files   map[string]*File
	baseURL string
}

// New creates a new in-memory storage instance.
func New(baseURL string) *Storage {
	return &Storage{
		files:   make(map[string]*File),
		baseURL: baseURL,
	}
}

// Upload keeps the file bytes in memory and returns the generated URL.
func (s *Storage) Upload(_ context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	if err := storage.ValidateKey(input.Key); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, input.Data); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	url := storage.JoinURL(s.baseURL, input.Key)

	s.mu.Lock()
	s.files[input.Key] = &File{
		Key:         input.Key,
		ContentType: input.ContentType,
		Data:        buf.Bytes(),
		URL:         url,
	}
	s.mu.Unlock()

	return &storage.UploadResult{Key: input.Key, URL: url}, nil
}

// Delete removes a file from memory.
func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.files[key]; !exists {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, key)
	}
	delete(s.files, key)
	return nil
}

// GetURL returns the URL for the given key.
func (s *Storage) GetURL(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, exists := s.files[key]
	if !exists {
		return "", fmt.Errorf("%w: %s", storage.ErrNotFound, key)
	}
	return f.URL, nil
}

// Get returns a stored file, for inspection in tests.
func (s *Storage) Get(key string) (*File, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[key]
	return f, ok
}
