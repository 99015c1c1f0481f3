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

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/storage"
)

// Storage implements storage.Storage on the local filesystem.
type Storage struct {
	root    string
	baseURL string
}

// New creates a local storage rooted at root. Relative roots are resolved
// against the working directory.
func New(root, baseURL string) (*Storage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root %s: %w", abs, err)
	}
	return &Storage{root: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// path maps a key to a file below root and rejects keys escaping it.
func (s *Storage) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash("/" + key))
	full := filepath.Join(s.root, clean)
	if !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return full, nil
}

func (s *Storage) Upload(_ context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	full, err := s.path(input.Key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir for %s: %w", input.Key, err)
	}

	f, err := os.Create(full)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", input.Key, err)
	}
	if _, err := io.Copy(f, input.Data); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return nil, fmt.Errorf("write %s: %w", input.Key, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %w", input.Key, err)
	}

	return &storage.UploadResult{Key: input.Key, URL: s.URL(input.Key)}, nil
}

func (s *Storage) Delete(_ context.Context, key string) error {
	full, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("delete %s: %w", key, storage.ErrNotFound)
		}
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *Storage) URL(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}

// Handler serves stored files. Mount it under the path of baseURL with the
// prefix stripped.
func (s *Storage) Handler() http.Handler {
	return http.FileServer(http.Dir(s.root))
}
