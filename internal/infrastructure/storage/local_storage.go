package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	ingestapp "github.com/ordersight/backend/internal/application/ingest"
)

// Ensure LocalFileStore implements FileStore
var _ ingestapp.FileStore = (*LocalFileStore)(nil)

// LocalFileStore stores uploaded order files on local disk under a root
// directory. Intended for development and single-node deployments.
type LocalFileStore struct {
	root string
}

// NewLocalFileStore creates a store rooted at dir, creating it if needed
func NewLocalFileStore(dir string) (*LocalFileStore, error) {
	if dir == "" {
		return nil, errors.New("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalFileStore{root: dir}, nil
}

// Save writes the file content under key below the root and returns the key
// as the stored reference.
func (s *LocalFileStore) Save(ctx context.Context, key string, r io.Reader, size int64) (string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return key, nil
}

// Fetch returns the on-disk path for the referenced file. The file already
// lives on local disk, so cleanup leaves it in place.
func (s *LocalFileStore) Fetch(ctx context.Context, ref string) (string, func(), error) {
	path, err := s.resolve(ref)
	if err != nil {
		return "", nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return "", nil, fmt.Errorf("failed to open stored file: %w", err)
	}
	return path, func() {}, nil
}

// resolve maps a storage key to a path under the root, rejecting keys that
// would escape it.
func (s *LocalFileStore) resolve(key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.root, cleaned), nil
}
