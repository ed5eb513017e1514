package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/doclane/doclane/internal/core/domain"
	"github.com/doclane/doclane/internal/core/ports/driven"
	"github.com/doclane/doclane/internal/core/ports/driving"
)

// Ensure Answerer implements the interface.
var _ driving.QueryService = (*Answerer)(nil)

// answerPrompt grounds the model in the retrieved chunks. The chunk
// markers give the reader provenance for each statement.
const answerPrompt = `You are answering a question about a single document.
Use ONLY the excerpts below. If the excerpts do not contain the answer,
say you cannot find it in the document. Do not invent information.

Excerpts:
%s

Question: %s

Answer:`

// Answerer produces grounded answers over one document's indexed
// chunks. Retrieval and generation failures are kept distinct: a
// retrieval error arrives synchronously, a generation error after
// retrieval succeeded arrives from the stream.
type Answerer struct {
	retriever *Retriever
	llm       driven.LLMService
}

// NewAnswerer creates a new answerer on top of a retriever.
func NewAnswerer(retriever *Retriever, llm driven.LLMService) *Answerer {
	return &Answerer{
		retriever: retriever,
		llm:       llm,
	}
}

// Search returns the top-k chunks for a query, scoped to one document.
func (a *Answerer) Search(
	ctx context.Context,
	documentID, query string,
	k int,
) (*domain.RetrievalResult, error) {
	return a.retriever.Search(ctx, documentID, query, k)
}

// Answer retrieves context and produces a complete generated answer.
func (a *Answerer) Answer(
	ctx context.Context,
	documentID, query string,
) (string, *domain.RetrievalResult, error) {
	result, err := a.retriever.Search(ctx, documentID, query, 0)
	if err != nil {
		return "", nil, err
	}

	answer, err := a.llm.Generate(ctx, buildAnswerPrompt(query, result.Chunks), driven.GenerateOptions{
		Temperature: 0.2,
	})
	if err != nil {
		return "", result, fmt.Errorf("%w: %v", domain.ErrGenerationFailure, err)
	}
	return strings.TrimSpace(answer), result, nil
}

// AnswerStream is Answer with incremental delivery.
func (a *Answerer) AnswerStream(
	ctx context.Context,
	documentID, query string,
) (<-chan domain.AnswerFragment, *domain.RetrievalResult, error) {
	result, err := a.retriever.Search(ctx, documentID, query, 0)
	if err != nil {
		return nil, nil, err
	}

	fragments, err := a.llm.GenerateStream(ctx, buildAnswerPrompt(query, result.Chunks), driven.GenerateOptions{
		Temperature: 0.2,
	})
	if err != nil {
		return nil, result, fmt.Errorf("%w: %v", domain.ErrGenerationFailure, err)
	}
	return fragments, result, nil
}

// buildAnswerPrompt assembles the excerpt block with provenance
// markers, ordered as retrieved (best match first).
func buildAnswerPrompt(query string, chunks []domain.ScoredChunk) string {
	var excerpts strings.Builder
	for i, sc := range chunks {
		fmt.Fprintf(&excerpts, "[chunk %d]\n%s\n\n", i+1, sc.Chunk.Content)
	}
	return fmt.Sprintf(answerPrompt, strings.TrimSpace(excerpts.String()), query)
}
