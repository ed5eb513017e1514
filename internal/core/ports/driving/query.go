package driving

import (
	"context"

	"github.com/doclane/doclane/internal/core/domain"
)

// QueryService answers questions against one document's indexed chunks.
type QueryService interface {
	// Search returns the top-k chunks for a query, scoped to one
	// document. Fails fast with domain.ErrDocumentNotReady while the
	// document is processing.
	Search(ctx context.Context, documentID, query string, k int) (*domain.RetrievalResult, error)

	// Answer retrieves context and produces a complete generated answer.
	Answer(ctx context.Context, documentID, query string) (string, *domain.RetrievalResult, error)

	// AnswerStream is Answer with incremental delivery. The channel is
	// closed when the answer is complete; a failure mid-stream arrives
	// as a final fragment with Err set. Cancelling ctx stops the
	// underlying generation call.
	AnswerStream(ctx context.Context, documentID, query string) (<-chan domain.AnswerFragment, *domain.RetrievalResult, error)
}

// SummaryService produces and serves document summaries.
type SummaryService interface {
	// Summarise generates (or regenerates) the summary for a ready
	// document from its full chunk set.
	Summarise(ctx context.Context, documentID string) (*domain.Summary, error)

	// Get returns the stored summary.
	Get(ctx context.Context, documentID string) (*domain.Summary, error)
}
