package cli

import (
	"context"

	"github.com/doclane/doclane/internal/core/domain"
	"github.com/doclane/doclane/internal/core/ports/driving"
)

// mockIngestService implements driving.IngestService for testing.
type mockIngestService struct {
	docs      []domain.Document
	ingested  []string
	deleted   []string
	watchDone domain.Status
	err       error
}

var _ driving.IngestService = (*mockIngestService)(nil)

func (m *mockIngestService) Ingest(_ context.Context, filename string, _ []byte) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.ingested = append(m.ingested, filename)
	return &domain.Document{ID: "doc-123", Filename: filename, Status: domain.StatusPending}, nil
}

func (m *mockIngestService) Status(_ context.Context, documentID string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		if m.docs[i].ID == documentID {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockIngestService) List(context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockIngestService) Watch(context.Context, string) (<-chan domain.Status, error) {
	if m.err != nil {
		return nil, m.err
	}
	ch := make(chan domain.Status, 1)
	ch <- m.watchDone
	close(ch)
	return ch, nil
}

func (m *mockIngestService) Reprocess(context.Context, string) error { return m.err }
func (m *mockIngestService) Delete(_ context.Context, documentID string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, documentID)
	return nil
}

// mockQueryService implements driving.QueryService for testing.
type mockQueryService struct {
	answer    string
	fragments []string
	chunks    []domain.ScoredChunk
	err       error
}

var _ driving.QueryService = (*mockQueryService)(nil)

func (m *mockQueryService) result(documentID, query string) *domain.RetrievalResult {
	return &domain.RetrievalResult{DocumentID: documentID, Query: query, Chunks: m.chunks}
}

func (m *mockQueryService) Search(_ context.Context, documentID, query string, _ int) (*domain.RetrievalResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result(documentID, query), nil
}

func (m *mockQueryService) Answer(_ context.Context, documentID, query string) (string, *domain.RetrievalResult, error) {
	if m.err != nil {
		return "", nil, m.err
	}
	return m.answer, m.result(documentID, query), nil
}

func (m *mockQueryService) AnswerStream(_ context.Context, documentID, query string) (<-chan domain.AnswerFragment, *domain.RetrievalResult, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	ch := make(chan domain.AnswerFragment, len(m.fragments))
	for _, text := range m.fragments {
		ch <- domain.AnswerFragment{Text: text}
	}
	close(ch)
	return ch, m.result(documentID, query), nil
}

// mockSummaryService implements driving.SummaryService for testing.
type mockSummaryService struct {
	summary *domain.Summary
	err     error
}

var _ driving.SummaryService = (*mockSummaryService)(nil)

func (m *mockSummaryService) Summarise(context.Context, string) (*domain.Summary, error) {
	return m.summary, m.err
}

func (m *mockSummaryService) Get(context.Context, string) (*domain.Summary, error) {
	return m.summary, m.err
}

// mockLifecycleService implements driving.LifecycleService for testing.
type mockLifecycleService struct {
	removed int
	err     error
}

var _ driving.LifecycleService = (*mockLifecycleService)(nil)

func (m *mockLifecycleService) Start(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockLifecycleService) Stop() error { return nil }

func (m *mockLifecycleService) SweepOnce(context.Context) (int, error) {
	return m.removed, m.err
}
