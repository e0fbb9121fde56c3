package storage

import (
	"context"
	"os"
	"path/filepath"
)

// BlobStore persists opaque artifacts such as rendered tickets. Put
// overwrites any prior content at the same path and returns a retrievable
// reference.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte) (string, error)
	Get(ctx context.Context, path string) ([]byte, error)
}

// LocalStore is a filesystem-backed BlobStore rooted at a directory.
type LocalStore struct {
	root string
}

// NewLocalStore creates a LocalStore rooted at root.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Put writes data to root/path, creating directories as needed.
func (s *LocalStore) Put(_ context.Context, path string, data []byte) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return full, nil
}

// Get reads the blob at root/path.
func (s *LocalStore) Get(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.root, filepath.FromSlash(path)))
}

// Ensure implementations satisfy the interface.
var (
	_ BlobStore = (*LocalStore)(nil)
	_ BlobStore = (*S3Store)(nil)
)
