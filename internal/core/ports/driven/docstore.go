package driven

import (
	"context"
	"time"

	"github.com/doclane/doclane/internal/core/domain"
)

// DocumentStore persists documents, chunks and summaries.
// Backed by SQLite for metadata storage.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all documents.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// ListByStatus returns documents in the given status.
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Document, error)

	// ListExpired returns documents whose ExpiresAt is before the cutoff.
	ListExpired(ctx context.Context, cutoff time.Time) ([]domain.Document, error)

	// SaveChunks replaces the chunk set for a document wholesale.
	SaveChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// GetChunks retrieves all chunks for a document, ordered by SeqIndex.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// SaveSummary stores or replaces the summary for a document.
	SaveSummary(ctx context.Context, summary *domain.Summary) error

	// GetSummary retrieves the summary for a document.
	GetSummary(ctx context.Context, documentID string) (*domain.Summary, error)

	// DeleteDocument removes a document, its chunks and its summary.
	// Deleting an absent document is not an error.
	DeleteDocument(ctx context.Context, id string) error
}

// BlobStore persists raw uploaded files, addressed by opaque reference.
type BlobStore interface {
	// Put stores content and returns a storage reference.
	Put(ctx context.Context, ref string, content []byte) error

	// Get retrieves content by reference.
	Get(ctx context.Context, ref string) ([]byte, error)

	// Delete removes content. Deleting an absent reference is not an
	// error.
	Delete(ctx context.Context, ref string) error
}
