package domain

// ScoredChunk pairs a retrieved chunk with its similarity score.
type ScoredChunk struct {
	// Chunk is the retrieved chunk, hydrated from the document store.
	Chunk Chunk

	// Score is the cosine similarity against the query vector, in [0, 1]
	// for normalised embeddings. Higher ranks first.
	Score float64
}

// RetrievalResult is the ranked outcome of one retrieval, ordered by
// descending score with ties broken by ascending chunk sequence index.
// It is transient and never persisted.
type RetrievalResult struct {
	// DocumentID is the document the retrieval was scoped to.
	DocumentID string

	// Query is the original query text.
	Query string

	// Chunks are the top-k matches, best first.
	Chunks []ScoredChunk
}

// Confidence tiers reported alongside answers and search results.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Confidence grades the retrieval by its best match. Similarity above
// 0.6 is high, above 0.4 medium, anything else low.
func (r RetrievalResult) Confidence() string {
	switch {
	case len(r.Chunks) > 0 && r.Chunks[0].Score > 0.6:
		return ConfidenceHigh
	case len(r.Chunks) > 0 && r.Chunks[0].Score > 0.4:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// AnswerFragment is one element of a streaming answer.
// A fragment carries either text or a terminal error, never both.
type AnswerFragment struct {
	// Text is the next piece of generated answer text.
	Text string

	// Err is non-nil exactly once, as the final event of a failed
	// stream. A closed channel without an Err fragment means success.
	Err error
}
