package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirStore serves blobs from a local directory tree, keyed by relative path.
// Used for local development and tests; the serving semantics match HTTPStore.
type DirStore struct {
	dir string
}

// NewDirStore builds a DirStore rooted at dir.
func NewDirStore(dir string) (*DirStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("store dir: %w", err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("store dir: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("store dir: %s is not a directory", abs)
	}
	return &DirStore{dir: abs}, nil
}

// keyPath maps a storage key onto the directory, rejecting escapes.
func (s *DirStore) keyPath(key string) (string, error) {
	clean := filepath.Clean(strings.TrimLeft(key, "/"))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("store key escapes root: %s", key)
	}
	return filepath.Join(s.dir, clean), nil
}

// Get reads the blob stored under key.
func (s *DirStore) Get(_ context.Context, key string) ([]byte, error) {
	p, err := s.keyPath(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound(key)
		}
		return nil, err
	}
	return b, nil
}

// Exists reports whether key is present.
func (s *DirStore) Exists(_ context.Context, key string) (bool, error) {
	p, err := s.keyPath(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
