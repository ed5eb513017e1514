package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/doclane/doclane/internal/core/domain"
	"github.com/doclane/doclane/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk
	summaries map[string]domain.Summary
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
		summaries: make(map[string]domain.Summary),
	}
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns all documents ordered by creation time.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Document, 0, len(s.documents))
	for id := range s.documents {
		result = append(result, s.documents[id])
	}
	sort.Slice(result, func(a, b int) bool {
		if !result[a].CreatedAt.Equal(result[b].CreatedAt) {
			return result[a].CreatedAt.Before(result[b].CreatedAt)
		}
		return result[a].ID < result[b].ID
	})
	return result, nil
}

// ListByStatus returns documents in the given status.
func (s *DocumentStore) ListByStatus(_ context.Context, status domain.Status) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Document
	for id := range s.documents {
		doc := s.documents[id]
		if doc.Status == status {
			result = append(result, doc)
		}
	}
	sort.Slice(result, func(a, b int) bool { return result[a].ID < result[b].ID })
	return result, nil
}

// ListExpired returns documents whose ExpiresAt is before the cutoff.
func (s *DocumentStore) ListExpired(_ context.Context, cutoff time.Time) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Document
	for id := range s.documents {
		doc := s.documents[id]
		if !doc.ExpiresAt.IsZero() && doc.ExpiresAt.Before(cutoff) {
			result = append(result, doc)
		}
	}
	sort.Slice(result, func(a, b int) bool { return result[a].ID < result[b].ID })
	return result, nil
}

// SaveChunks replaces the chunk set for a document wholesale.
func (s *DocumentStore) SaveChunks(_ context.Context, documentID string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)
	sort.Slice(stored, func(a, b int) bool { return stored[a].SeqIndex < stored[b].SeqIndex })
	s.chunks[documentID] = stored
	return nil
}

// GetChunks retrieves all chunks for a document, ordered by SeqIndex.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks, ok := s.chunks[documentID]
	if !ok {
		return nil, nil
	}
	result := make([]domain.Chunk, len(chunks))
	copy(result, chunks)
	return result, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *DocumentStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, chunks := range s.chunks {
		for _, chunk := range chunks {
			if chunk.ID == id {
				return &chunk, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

// SaveSummary stores or replaces the summary for a document.
func (s *DocumentStore) SaveSummary(_ context.Context, summary *domain.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[summary.DocumentID] = *summary
	return nil
}

// GetSummary retrieves the summary for a document.
func (s *DocumentStore) GetSummary(_ context.Context, documentID string) (*domain.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary, ok := s.summaries[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &summary, nil
}

// DeleteDocument removes a document, its chunks and its summary.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	delete(s.chunks, id)
	delete(s.summaries, id)
	return nil
}
