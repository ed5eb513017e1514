package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doclane/doclane/internal/core/domain"
)

func TestStore_PutGetRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	content := []byte("%PDF-1.4 raw bytes")
	require.NoError(t, store.Put(ctx, "blobs/doc-1", content))

	got, err := store.Get(ctx, "blobs/doc-1")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestStore_Put_Overwrites(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "doc-1", []byte("old")))
	require.NoError(t, store.Put(ctx, "doc-1", []byte("new")))

	got, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestStore_Put_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "doc-1", []byte("data")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".blob-")
	}
}

func TestStore_Get_NotFound(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Delete_Idempotent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "doc-1", []byte("data")))
	require.NoError(t, store.Delete(ctx, "doc-1"))
	require.NoError(t, store.Delete(ctx, "doc-1"))

	_, err = store.Get(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_RejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "root"))
	require.NoError(t, err)
	ctx := context.Background()

	err = store.Put(ctx, "../outside", []byte("data"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = store.Put(ctx, "", []byte("data"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = store.Get(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_NestedReferences(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "blobs/2026/08/doc-1", []byte("nested")))

	got, err := store.Get(ctx, "blobs/2026/08/doc-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("nested"), got)
}
