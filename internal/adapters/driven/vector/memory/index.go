// Package memory provides an in-memory vector index partitioned by
// document. Search is exact cosine similarity over one document's
// vectors, which stays fast at the per-document chunk counts this
// pipeline produces.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/doclane/doclane/internal/core/domain"
	"github.com/doclane/doclane/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// entry is one stored chunk vector with its precomputed norm.
type entry struct {
	chunkID  string
	seqIndex int
	vector   []float32
	norm     float64
}

// Index is an in-memory implementation of driven.VectorIndex.
type Index struct {
	mu         sync.RWMutex
	partitions map[string][]entry
}

// NewIndex creates a new in-memory vector index.
func NewIndex() *Index {
	return &Index{
		partitions: make(map[string][]entry),
	}
}

// Upsert replaces all vectors for a document in one atomic step.
// A reader holding the lock sees either the old set or the new set,
// never a mix.
func (i *Index) Upsert(_ context.Context, documentID string, entries []driven.VectorEntry) error {
	if documentID == "" {
		return domain.ErrInvalidInput
	}

	stored := make([]entry, len(entries))
	for n, e := range entries {
		if len(e.Embedding) == 0 {
			return fmt.Errorf("%w: empty vector for chunk %s", domain.ErrInvalidInput, e.ChunkID)
		}
		vec := make([]float32, len(e.Embedding))
		copy(vec, e.Embedding)
		stored[n] = entry{
			chunkID:  e.ChunkID,
			seqIndex: e.SeqIndex,
			vector:   vec,
			norm:     vectorNorm(vec),
		}
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.partitions[documentID] = stored
	return nil
}

// Search finds the k nearest neighbours within one document's partition.
// Results are ordered by descending cosine similarity; ties break by
// ascending chunk sequence index for determinism.
func (i *Index) Search(_ context.Context, documentID string, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, domain.ErrInvalidInput
	}

	queryNorm := vectorNorm(query)
	if queryNorm == 0 {
		return nil, fmt.Errorf("%w: zero query vector", domain.ErrInvalidInput)
	}

	i.mu.RLock()
	partition := i.partitions[documentID]
	hits := make([]driven.VectorHit, 0, len(partition))
	for _, e := range partition {
		sim := cosine(query, queryNorm, e.vector, e.norm)
		hits = append(hits, driven.VectorHit{
			ChunkID:    e.chunkID,
			SeqIndex:   e.seqIndex,
			Similarity: sim,
		})
	}
	i.mu.RUnlock()

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Similarity != hits[b].Similarity {
			return hits[a].Similarity > hits[b].Similarity
		}
		return hits[a].SeqIndex < hits[b].SeqIndex
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of vectors indexed for a document.
func (i *Index) Count(_ context.Context, documentID string) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.partitions[documentID]), nil
}

// Delete removes a document's partition. Deleting an absent document is
// not an error.
func (i *Index) Delete(_ context.Context, documentID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.partitions, documentID)
	return nil
}

// DocumentIDs lists documents currently holding vectors.
func (i *Index) DocumentIDs(_ context.Context) ([]string, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	ids := make([]string, 0, len(i.partitions))
	for id := range i.partitions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close releases resources.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.partitions = make(map[string][]entry)
	return nil
}

// vectorNorm computes the Euclidean norm.
func vectorNorm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// cosine computes cosine similarity given precomputed norms.
// Mismatched dimensions score zero rather than panicking; the embedding
// model is fixed per deployment so this only happens on misconfiguration.
func cosine(a []float32, normA float64, b []float32, normB float64) float64 {
	if len(a) != len(b) || normA == 0 || normB == 0 {
		return 0
	}

	var dot float64
	for n := range a {
		dot += float64(a[n]) * float64(b[n])
	}
	return dot / (normA * normB)
}
