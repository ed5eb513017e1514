package driving

import (
	"context"

	"github.com/doclane/doclane/internal/core/domain"
)

// IngestService accepts uploads and runs the processing pipeline.
type IngestService interface {
	// Ingest stores the upload, registers a pending document and starts
	// background processing. It returns as soon as the document record
	// exists; completion is observed via Status or Watch.
	Ingest(ctx context.Context, filename string, content []byte) (*domain.Document, error)

	// Status returns the current document record.
	Status(ctx context.Context, documentID string) (*domain.Document, error)

	// List returns all documents ordered by creation time.
	List(ctx context.Context) ([]domain.Document, error)

	// Watch returns a channel that receives the document's terminal
	// status (ready or failed) exactly once, then closes. Watching an
	// already-terminal document yields immediately.
	Watch(ctx context.Context, documentID string) (<-chan domain.Status, error)

	// Reprocess restarts the lifecycle for an existing document from its
	// stored blob, replacing chunks, vectors and summary.
	Reprocess(ctx context.Context, documentID string) error

	// Delete removes the document, its vectors and its blob.
	// Deleting twice is not an error.
	Delete(ctx context.Context, documentID string) error
}
