package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/storage"
)

type object struct {
	contentType string
	data        []byte
}

// Storage implements storage.Storage in memory. It is used in tests and for
// running the catalog without a disk or bucket.
type Storage struct {
	mu      sync.RWMutex
	objects map[string]object
	baseURL string
}

// New creates an in-memory storage serving URLs under baseURL.
func New(baseURL string) *Storage {
	return &Storage{
		objects: make(map[string]object),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *Storage) Upload(_ context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	data, err := io.ReadAll(input.Data)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", input.Key, err)
	}

	s.mu.Lock()
	s.objects[input.Key] = object{contentType: input.ContentType, data: data}
	s.mu.Unlock()

	return &storage.UploadResult{Key: input.Key, URL: s.URL(input.Key)}, nil
}

func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[key]; !ok {
		return fmt.Errorf("delete %s: %w", key, storage.ErrNotFound)
	}
	delete(s.objects, key)
	return nil
}

func (s *Storage) URL(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}

// Get returns a stored object's bytes and content type.
func (s *Storage) Get(key string) (io.Reader, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.objects[key]
	if !ok {
		return nil, "", false
	}
	return bytes.NewReader(o.data), o.contentType, true
}

// Len returns the number of stored objects.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
