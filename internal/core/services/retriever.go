package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/doclane/doclane/internal/core/domain"
	"github.com/doclane/doclane/internal/core/ports/driven"
	"github.com/doclane/doclane/internal/retry"
)

// Retriever finds the most relevant chunks for a query within one
// document. Readiness is checked before the index or the embedding
// provider is touched, so a not-ready document fails fast and cheap.
type Retriever struct {
	docs        driven.DocumentStore
	embedder    driven.EmbeddingService
	vectors     driven.VectorIndex
	defaultK    int
	retryPolicy retry.Policy
}

// NewRetriever creates a new retriever. defaultK applies when a caller
// passes k <= 0.
func NewRetriever(
	docs driven.DocumentStore,
	embedder driven.EmbeddingService,
	vectors driven.VectorIndex,
	defaultK int,
) *Retriever {
	if defaultK <= 0 {
		defaultK = domain.DefaultRetrievalK
	}
	return &Retriever{
		docs:        docs,
		embedder:    embedder,
		vectors:     vectors,
		defaultK:    defaultK,
		retryPolicy: retry.DefaultPolicy(),
	}
}

// Search returns the top-k chunks for a query, scoped to one document.
func (r *Retriever) Search(
	ctx context.Context,
	documentID, query string,
	k int,
) (*domain.RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = r.defaultK
	}

	doc, err := r.docs.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if doc.Status != domain.StatusReady {
		return nil, fmt.Errorf("%w: document is %s", domain.ErrDocumentNotReady, doc.Status)
	}

	count, err := r.vectors.Count(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("count vectors: %w", err)
	}
	if count == 0 {
		return nil, domain.ErrEmptyIndex
	}

	var queryVec []float32
	err = retry.Do(ctx, r.retryPolicy, func(ctx context.Context) error {
		var embErr error
		queryVec, embErr = r.embedder.Embed(ctx, query)
		return embErr
	})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.vectors.Search(ctx, documentID, queryVec, k)
	if err != nil {
		return nil, fmt.Errorf("search vectors: %w", err)
	}

	result := &domain.RetrievalResult{
		DocumentID: documentID,
		Query:      query,
		Chunks:     make([]domain.ScoredChunk, 0, len(hits)),
	}
	for _, hit := range hits {
		chunk, err := r.docs.GetChunk(ctx, hit.ChunkID)
		if err != nil {
			return nil, fmt.Errorf("%w: chunk %s indexed but not stored", domain.ErrIndexMismatch, hit.ChunkID)
		}
		result.Chunks = append(result.Chunks, domain.ScoredChunk{
			Chunk: *chunk,
			Score: hit.Similarity,
		})
	}
	return result, nil
}
