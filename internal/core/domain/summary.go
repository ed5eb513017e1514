package domain

import "time"

// Summary is the generated structured summary of one document (1:1).
// It is created after all chunks are embedded and may be regenerated,
// replacing the prior value wholesale.
type Summary struct {
	// DocumentID links to the summarised Document.
	DocumentID string

	// Text is the prose summary.
	Text string

	// KeyPoints is an ordered list of extracted key points.
	KeyPoints []string

	// Paragraphs is the summary split into ordered paragraphs.
	Paragraphs []string

	// PersonalInfo holds personal or identifying details found in the
	// document (names, dates, identifiers), or "none" when absent.
	PersonalInfo string

	// WordCount is the word count of the source document text.
	WordCount int

	// CreatedAt is when this summary was generated.
	CreatedAt time.Time
}
