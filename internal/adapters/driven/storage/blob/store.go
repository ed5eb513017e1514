// Package blob provides filesystem-backed storage for raw uploaded
// files, addressed by opaque reference.
package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/doclane/doclane/internal/core/domain"
	"github.com/doclane/doclane/internal/core/ports/driven"
)

var _ driven.BlobStore = (*Store)(nil)

// Store writes blobs under a root directory. References map to file
// paths relative to the root; traversal outside the root is rejected.
type Store struct {
	root string
}

// NewStore creates a blob store rooted at dir. If dir is empty,
// defaults to ~/.doclane/data/blobs.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".doclane", "data", "blobs")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}
	return &Store{root: dir}, nil
}

// Root returns the root directory of the store.
func (s *Store) Root() string {
	return s.root
}

// Put stores content under the given reference. A partially written
// file is never visible: content lands in a temp file first and is
// renamed into place.
func (s *Store) Put(_ context.Context, ref string, content []byte) error {
	path, err := s.resolve(ref)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating blob subdirectory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".blob-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("placing blob: %w", err)
	}
	return nil
}

// Get retrieves content by reference.
func (s *Store) Get(_ context.Context, ref string) ([]byte, error) {
	path, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading blob: %w", err)
	}
	return content, nil
}

// Delete removes content. Deleting an absent reference is not an
// error.
func (s *Store) Delete(_ context.Context, ref string) error {
	path, err := s.resolve(ref)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting blob: %w", err)
	}
	return nil
}

// resolve maps a reference to a path inside the root.
func (s *Store) resolve(ref string) (string, error) {
	if ref == "" {
		return "", domain.ErrInvalidInput
	}
	cleaned := filepath.Clean(filepath.FromSlash(ref))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: reference escapes store root", domain.ErrInvalidInput)
	}
	return filepath.Join(s.root, cleaned), nil
}
