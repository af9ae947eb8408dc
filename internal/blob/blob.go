// Package blob abstracts byte-blob storage behind the minimal contract the
// autonomy applier needs: store under a path, hand back a durable URL.
package blob

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store persists named byte blobs and resolves their public URLs.
type Store interface {
	Upload(path string, data []byte, contentType string) error
	PublicURL(path string) string
}

// LocalStore writes blobs under a directory on disk. The server mounts the
// directory at /files, so PublicURL composes BaseURL with the blob path.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates a LocalStore rooted at dir. baseURL is the public
// prefix blobs are served from, e.g. "http://localhost:8080/files".
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("blob: storage dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create dir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the root directory blobs are written under.
func (s *LocalStore) Dir() string { return s.dir }

// Upload writes the blob to disk. contentType is recorded by the caller's
// document row, not here.
func (s *LocalStore) Upload(path string, data []byte, contentType string) error {
	full := filepath.Join(s.dir, filepath.Clean("/"+path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("blob: upload %s: %w", path, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("blob: upload %s: %w", path, err)
	}
	return nil
}

// PublicURL returns the durable URL a stored blob is served from.
func (s *LocalStore) PublicURL(path string) string {
	return s.baseURL + "/" + strings.TrimLeft(path, "/")
}
