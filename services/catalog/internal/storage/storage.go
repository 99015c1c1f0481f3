package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("object not found")

// Storage defines the interface for media object storage.
type Storage interface {
	// Upload stores an object and returns its key and public URL.
	Upload(ctx context.Context, input *UploadInput) (*UploadResult, error)

	// Delete removes an object by its key.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL for the given key.
	URL(key string) string
}

// UploadInput holds the parameters for uploading an object.
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
