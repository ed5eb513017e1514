package domain

import "time"

// Status is the processing state of an uploaded document.
type Status string

// Document processing states.
const (
	// StatusPending means the upload is stored but processing has not begun.
	StatusPending Status = "pending"

	// StatusProcessing means extraction, chunking, embedding or
	// summarisation is in flight.
	StatusProcessing Status = "processing"

	// StatusReady means all chunks are indexed and the summary exists.
	// The document is searchable.
	StatusReady Status = "ready"

	// StatusFailed means a pipeline stage reported a terminal error.
	// ErrorMessage on the document records the cause.
	StatusFailed Status = "failed"
)

// IsValid returns true if the status is recognised.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusReady, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if no further processing transition is allowed
// without an explicit reprocess request.
func (s Status) IsTerminal() bool {
	return s == StatusReady || s == StatusFailed
}

// CanTransition reports whether moving from s to next is a legal
// lifecycle transition. Deletion is not modelled as a status; any state
// may be deleted.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusReady || next == StatusFailed
	case StatusReady, StatusFailed:
		// Terminal. Only an explicit reprocess restarts the lifecycle.
		return next == StatusPending
	default:
		return false
	}
}

// String returns the string representation.
func (s Status) String() string {
	return string(s)
}

// Document represents an uploaded document and its processing lifecycle.
// It is owned by the ingestion pipeline and mutated only through status
// transitions.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Filename is the original upload filename.
	Filename string

	// FileType is the detected format (pdf, word, image, plain).
	FileType FileType

	// SizeBytes is the raw upload size.
	SizeBytes int64

	// Status is the current processing state.
	Status Status

	// ChunkCount is the number of chunks currently indexed for the
	// document. Zero until indexing completes.
	ChunkCount int

	// StorageRef locates the raw bytes in the blob store.
	StorageRef string

	// ErrorMessage records the terminal failure cause when Status is
	// StatusFailed.
	ErrorMessage string

	// ExpiresAt is CreatedAt plus the retention period. Reads never
	// extend it.
	ExpiresAt time.Time

	// CreatedAt is when the upload was accepted.
	CreatedAt time.Time

	// UpdatedAt is when the document last changed.
	UpdatedAt time.Time
}

// Expired returns true if the document's retention window has passed.
func (d *Document) Expired(now time.Time) bool {
	return !d.ExpiresAt.IsZero() && d.ExpiresAt.Before(now)
}

// Chunk is a contiguous slice of a document's normalised text, the unit
// of embedding and retrieval. Chunks are immutable once created; a
// document's chunk set is replaced wholesale on reprocessing.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// SeqIndex is the ordinal position within the document.
	SeqIndex int

	// StartOffset and EndOffset delimit the chunk as a half-open
	// [start, end) rune range into the normalised text.
	StartOffset int
	EndOffset   int

	// Content is the chunk text.
	Content string

	// Embedding is the vector representation, populated once embedded.
	Embedding []float32
}
