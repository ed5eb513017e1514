package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doclane/doclane/internal/core/domain"
	"github.com/doclane/doclane/internal/core/ports/driven"
)

func entries(vecs ...[]float32) []driven.VectorEntry {
	out := make([]driven.VectorEntry, len(vecs))
	for i, v := range vecs {
		out[i] = driven.VectorEntry{
			ChunkID:   string(rune('a' + i)),
			SeqIndex:  i,
			Embedding: v,
		}
	}
	return out
}

func TestNewIndex(t *testing.T) {
	idx := NewIndex()
	require.NotNil(t, idx)
}

func TestUpsert_And_Count(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	err := idx.Upsert(ctx, "doc-1", entries([]float32{1, 0}, []float32{0, 1}))
	require.NoError(t, err)

	count, err := idx.Count(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestUpsert_ReplacesWholesale(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "doc-1", entries([]float32{1, 0}, []float32{0, 1}, []float32{1, 1})))
	require.NoError(t, idx.Upsert(ctx, "doc-1", entries([]float32{1, 0})))

	count, err := idx.Count(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "upsert must replace, not append")
}

func TestUpsert_EmptyVector(t *testing.T) {
	idx := NewIndex()

	err := idx.Upsert(context.Background(), "doc-1", []driven.VectorEntry{{ChunkID: "c1"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearch_ExactMatchScoresOne(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	target := []float32{0.3, 0.7, 0.2}
	require.NoError(t, idx.Upsert(ctx, "doc-1", entries([]float32{1, 0, 0}, target, []float32{0, 0, 1})))

	hits, err := idx.Search(ctx, "doc-1", target, 3)
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	assert.Equal(t, "b", hits[0].ChunkID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-9)
}

func TestSearch_RankedDescending(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "doc-1", entries(
		[]float32{1, 0},     // orthogonal to query
		[]float32{1, 1},     // 45 degrees
		[]float32{0.1, 0.9}, // close to query
	)))

	hits, err := idx.Search(ctx, "doc-1", []float32{0, 1}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "c", hits[0].ChunkID)
	assert.Equal(t, "b", hits[1].ChunkID)
	assert.Equal(t, "a", hits[2].ChunkID)
	assert.GreaterOrEqual(t, hits[0].Similarity, hits[1].Similarity)
	assert.GreaterOrEqual(t, hits[1].Similarity, hits[2].Similarity)
}

func TestSearch_TieBrokenBySeqIndex(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	// Identical vectors tie exactly; order must follow sequence index.
	same := []float32{0.5, 0.5}
	require.NoError(t, idx.Upsert(ctx, "doc-1", []driven.VectorEntry{
		{ChunkID: "later", SeqIndex: 7, Embedding: same},
		{ChunkID: "earlier", SeqIndex: 2, Embedding: same},
	}))

	hits, err := idx.Search(ctx, "doc-1", same, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "earlier", hits[0].ChunkID)
	assert.Equal(t, "later", hits[1].ChunkID)
}

func TestSearch_IsolationBetweenDocuments(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	// Same vocabulary, different documents.
	shared := []float32{0.6, 0.8}
	require.NoError(t, idx.Upsert(ctx, "doc-a", []driven.VectorEntry{
		{ChunkID: "a-chunk", SeqIndex: 0, Embedding: shared},
	}))
	require.NoError(t, idx.Upsert(ctx, "doc-b", []driven.VectorEntry{
		{ChunkID: "b-chunk", SeqIndex: 0, Embedding: shared},
	}))

	hits, err := idx.Search(ctx, "doc-a", shared, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a-chunk", hits[0].ChunkID)
}

func TestSearch_LimitsToK(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "doc-1", entries(
		[]float32{1, 0}, []float32{0, 1}, []float32{1, 1}, []float32{1, 2},
	)))

	hits, err := idx.Search(ctx, "doc-1", []float32{1, 1}, 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSearch_EmptyPartition(t *testing.T) {
	idx := NewIndex()

	hits, err := idx.Search(context.Background(), "missing", []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_InvalidInput(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	_, err := idx.Search(ctx, "doc-1", []float32{1, 0}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = idx.Search(ctx, "doc-1", []float32{0, 0}, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDelete_Idempotent(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "doc-1", entries([]float32{1, 0})))

	require.NoError(t, idx.Delete(ctx, "doc-1"))
	require.NoError(t, idx.Delete(ctx, "doc-1"), "second delete must not error")

	count, err := idx.Count(ctx, "doc-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDocumentIDs(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "doc-b", entries([]float32{1})))
	require.NoError(t, idx.Upsert(ctx, "doc-a", entries([]float32{1})))

	ids, err := idx.DocumentIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-a", "doc-b"}, ids)
}

func TestConcurrentAccess(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	var wg sync.WaitGroup
	for n := 0; n < 8; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			docID := string(rune('a' + n%4))
			for j := 0; j < 50; j++ {
				_ = idx.Upsert(ctx, docID, entries([]float32{1, 0}, []float32{0, 1}))
				_, _ = idx.Search(ctx, docID, []float32{1, 1}, 2)
				_, _ = idx.Count(ctx, docID)
			}
		}(n)
	}
	wg.Wait()

	// Every touched partition holds a complete set, never a partial one.
	for _, docID := range []string{"a", "b", "c", "d"} {
		count, err := idx.Count(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	}
}
