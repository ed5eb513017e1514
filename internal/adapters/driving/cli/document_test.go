package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/doclane/doclane/internal/core/domain"
)

func setupIngestTest(mock *mockIngestService) func() {
	oldIngest := ingestService
	ingestService = mock
	return func() {
		ingestService = oldIngest
	}
}

func TestStatusCmd_PrintsDocument(t *testing.T) {
	cleanup := setupIngestTest(&mockIngestService{
		docs: []domain.Document{{
			ID:         "doc-123",
			Filename:   "contract.pdf",
			FileType:   domain.FileTypePDF,
			Status:     domain.StatusReady,
			ChunkCount: 7,
			ExpiresAt:  time.Date(2026, 9, 29, 12, 0, 0, 0, time.UTC),
		}},
	})
	defer cleanup()

	out, err := execute("status", "doc-123")

	assert.NoError(t, err)
	assert.Contains(t, out, "contract.pdf")
	assert.Contains(t, out, "ready")
	assert.Contains(t, out, "Chunks:   7")
	assert.Contains(t, out, "2026-09-29")
}

func TestStatusCmd_ShowsFailureReason(t *testing.T) {
	cleanup := setupIngestTest(&mockIngestService{
		docs: []domain.Document{{
			ID:           "doc-123",
			Filename:     "broken.pdf",
			Status:       domain.StatusFailed,
			ErrorMessage: "extract: no text layer",
		}},
	})
	defer cleanup()

	out, err := execute("status", "doc-123")

	assert.NoError(t, err)
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "no text layer")
}

func TestStatusCmd_UnknownDocument(t *testing.T) {
	cleanup := setupIngestTest(&mockIngestService{})
	defer cleanup()

	_, err := execute("status", "missing")

	assert.Error(t, err)
}

func TestListCmd_PrintsDocuments(t *testing.T) {
	cleanup := setupIngestTest(&mockIngestService{
		docs: []domain.Document{
			{ID: "doc-1", Filename: "a.txt", Status: domain.StatusReady},
			{ID: "doc-2", Filename: "b.pdf", Status: domain.StatusProcessing},
		},
	})
	defer cleanup()

	out, err := execute("list")

	assert.NoError(t, err)
	assert.Contains(t, out, "doc-1")
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "processing")
}

func TestListCmd_Empty(t *testing.T) {
	cleanup := setupIngestTest(&mockIngestService{})
	defer cleanup()

	out, err := execute("list")

	assert.NoError(t, err)
	assert.Contains(t, out, "No documents ingested yet.")
}

func TestDeleteCmd_DeletesDocument(t *testing.T) {
	mock := &mockIngestService{}
	cleanup := setupIngestTest(mock)
	defer cleanup()

	out, err := execute("delete", "doc-123")

	assert.NoError(t, err)
	assert.Equal(t, []string{"doc-123"}, mock.deleted)
	assert.Contains(t, out, "deleted")
}

func TestReprocessCmd_RejectsInFlightDocument(t *testing.T) {
	cleanup := setupIngestTest(&mockIngestService{err: domain.ErrInvalidInput})
	defer cleanup()

	_, err := execute("reprocess", "doc-123")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentCmds_NoServiceConfigured(t *testing.T) {
	oldIngest := ingestService
	ingestService = nil
	defer func() { ingestService = oldIngest }()

	for _, args := range [][]string{
		{"status", "doc-123"},
		{"list"},
		{"delete", "doc-123"},
		{"reprocess", "doc-123"},
	} {
		_, err := execute(args...)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not configured")
	}
}
