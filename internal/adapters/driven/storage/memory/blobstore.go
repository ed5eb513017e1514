package memory

import (
	"context"
	"sync"

	"github.com/doclane/doclane/internal/core/domain"
	"github.com/doclane/doclane/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore is an in-memory implementation of driven.BlobStore.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string][]byte)}
}

// Put stores content under the given reference.
func (s *BlobStore) Put(_ context.Context, ref string, content []byte) error {
	if ref == "" {
		return domain.ErrInvalidInput
	}
	stored := make([]byte, len(content))
	copy(stored, content)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[ref] = stored
	return nil
}

// Get retrieves content by reference.
func (s *BlobStore) Get(_ context.Context, ref string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.blobs[ref]
	if !ok {
		return nil, domain.ErrNotFound
	}
	result := make([]byte, len(content))
	copy(result, content)
	return result, nil
}

// Delete removes content. Deleting an absent reference is not an error.
func (s *BlobStore) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, ref)
	return nil
}
