package driven

import "context"

// VectorIndex provides per-document semantic similarity search.
//
// Vectors are partitioned by document id: a search scoped to one document
// never returns chunks from another. Upsert replaces a document's vector
// set atomically so a concurrent search never observes a partially indexed
// document.
type VectorIndex interface {
	// Upsert replaces all vectors for a document in one atomic step.
	Upsert(ctx context.Context, documentID string, entries []VectorEntry) error

	// Search finds the k nearest neighbours to the query vector within
	// one document's partition. Results are ordered by descending
	// similarity; ties break by ascending chunk sequence index.
	Search(ctx context.Context, documentID string, query []float32, k int) ([]VectorHit, error)

	// Count returns the number of vectors indexed for a document.
	Count(ctx context.Context, documentID string) (int, error)

	// Delete removes a document's partition. Deleting an absent document
	// is not an error.
	Delete(ctx context.Context, documentID string) error

	// DocumentIDs lists documents currently holding vectors. The expiry
	// sweep uses it to find orphaned partitions.
	DocumentIDs(ctx context.Context) ([]string, error)

	// Close releases resources.
	Close() error
}

// VectorEntry is one chunk vector to index.
type VectorEntry struct {
	// ChunkID is the chunk this vector belongs to.
	ChunkID string

	// SeqIndex is the chunk's ordinal position, used for deterministic
	// tie-breaking.
	SeqIndex int

	// Embedding is the vector.
	Embedding []float32
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// SeqIndex is the matched chunk's ordinal position.
	SeqIndex int

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}
