package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doclane/doclane/internal/core/domain"
)

func TestNewDocumentStore(t *testing.T) {
	store := NewDocumentStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.documents)
	assert.NotNil(t, store.chunks)
	assert.NotNil(t, store.summaries)
}

func TestDocumentStore_SaveDocument_Success(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	now := time.Now()
	doc := &domain.Document{
		ID:        "doc-1",
		Filename:  "report.pdf",
		FileType:  domain.FileTypePDF,
		SizeBytes: 4096,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := store.SaveDocument(ctx, doc)
	require.NoError(t, err)

	saved, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", saved.ID)
	assert.Equal(t, "report.pdf", saved.Filename)
	assert.Equal(t, domain.FileTypePDF, saved.FileType)
	assert.Equal(t, domain.StatusPending, saved.Status)
}

func TestDocumentStore_SaveDocument_Update(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc := &domain.Document{ID: "doc-1", Status: domain.StatusPending}
	require.NoError(t, store.SaveDocument(ctx, doc))

	doc.Status = domain.StatusReady
	doc.ChunkCount = 12
	require.NoError(t, store.SaveDocument(ctx, doc))

	saved, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, saved.Status)
	assert.Equal(t, 12, saved.ChunkCount)
}

func TestDocumentStore_GetDocument_NotFound(t *testing.T) {
	store := NewDocumentStore()

	_, err := store.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ListDocuments_OrderedByCreation(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	base := time.Now()
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "newer", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "older", CreatedAt: base}))

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "older", docs[0].ID)
	assert.Equal(t, "newer", docs[1].ID)
}

func TestDocumentStore_ListByStatus(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "a", Status: domain.StatusReady}))
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "b", Status: domain.StatusFailed}))
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "c", Status: domain.StatusReady}))

	ready, err := store.ListByStatus(ctx, domain.StatusReady)
	require.NoError(t, err)
	require.Len(t, ready, 2)
	assert.Equal(t, "a", ready[0].ID)
	assert.Equal(t, "c", ready[1].ID)

	failed, err := store.ListByStatus(ctx, domain.StatusFailed)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "b", failed[0].ID)
}

func TestDocumentStore_ListExpired(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "expired", ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "live", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "no-expiry"}))

	expired, err := store.ListExpired(ctx, now)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "expired", expired[0].ID)
}

func TestDocumentStore_SaveChunks_ReplacesWholesale(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	first := []domain.Chunk{
		{ID: "c1", DocumentID: "doc-1", SeqIndex: 0, Content: "one"},
		{ID: "c2", DocumentID: "doc-1", SeqIndex: 1, Content: "two"},
	}
	require.NoError(t, store.SaveChunks(ctx, "doc-1", first))

	second := []domain.Chunk{
		{ID: "c3", DocumentID: "doc-1", SeqIndex: 0, Content: "replaced"},
	}
	require.NoError(t, store.SaveChunks(ctx, "doc-1", second))

	chunks, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "c3", chunks[0].ID)
}

func TestDocumentStore_GetChunks_OrderedBySeqIndex(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveChunks(ctx, "doc-1", []domain.Chunk{
		{ID: "c2", DocumentID: "doc-1", SeqIndex: 1},
		{ID: "c1", DocumentID: "doc-1", SeqIndex: 0},
		{ID: "c3", DocumentID: "doc-1", SeqIndex: 2},
	}))

	chunks, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "c1", chunks[0].ID)
	assert.Equal(t, "c2", chunks[1].ID)
	assert.Equal(t, "c3", chunks[2].ID)
}

func TestDocumentStore_GetChunk(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveChunks(ctx, "doc-1", []domain.Chunk{
		{ID: "c1", DocumentID: "doc-1", SeqIndex: 0, Content: "hello"},
	}))

	chunk, err := store.GetChunk(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "hello", chunk.Content)

	_, err = store.GetChunk(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_Summaries(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	summary := &domain.Summary{
		DocumentID: "doc-1",
		Text:       "A short account of the document.",
		KeyPoints:  []string{"first point"},
		WordCount:  6,
	}
	require.NoError(t, store.SaveSummary(ctx, summary))

	saved, err := store.GetSummary(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, summary.Text, saved.Text)
	assert.Equal(t, summary.KeyPoints, saved.KeyPoints)

	_, err = store.GetSummary(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_DeleteDocument(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-1"}))
	require.NoError(t, store.SaveChunks(ctx, "doc-1", []domain.Chunk{{ID: "c1", DocumentID: "doc-1"}}))
	require.NoError(t, store.SaveSummary(ctx, &domain.Summary{DocumentID: "doc-1"}))

	require.NoError(t, store.DeleteDocument(ctx, "doc-1"))

	_, err := store.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	chunks, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, chunks)
	_, err = store.GetSummary(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting again is a no-op.
	require.NoError(t, store.DeleteDocument(ctx, "doc-1"))
}

func TestDocumentStore_ConcurrentAccess(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for n := 0; n < 8; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n%4))
			for j := 0; j < 50; j++ {
				_ = store.SaveDocument(ctx, &domain.Document{ID: id})
				_, _ = store.GetDocument(ctx, id)
				_, _ = store.ListDocuments(ctx)
			}
		}(n)
	}
	wg.Wait()

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 4)
}

func TestBlobStore_PutGetDelete(t *testing.T) {
	store := NewBlobStore()
	ctx := context.Background()

	content := []byte("raw file bytes")
	require.NoError(t, store.Put(ctx, "blobs/doc-1", content))

	got, err := store.Get(ctx, "blobs/doc-1")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	// Stored bytes are independent of the caller's slice.
	content[0] = 'X'
	got2, err := store.Get(ctx, "blobs/doc-1")
	require.NoError(t, err)
	assert.Equal(t, byte('r'), got2[0])

	require.NoError(t, store.Delete(ctx, "blobs/doc-1"))
	_, err = store.Get(ctx, "blobs/doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Delete(ctx, "blobs/doc-1"))
}

func TestBlobStore_EmptyRef(t *testing.T) {
	store := NewBlobStore()

	err := store.Put(context.Background(), "", []byte("data"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
