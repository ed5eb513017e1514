package driven

import (
	"context"

	"github.com/doclane/doclane/internal/core/domain"
)

// TextExtractor converts raw file bytes into normalised UTF-8 text.
// Each extractor handles one detected file type. Extraction is a pure
// transform: no side effects beyond an OCR call for images.
//
// An extractor never succeeds with empty text. A file from which no text
// can be recovered fails with domain.ErrCorruptFile or domain.ErrOCRFailure
// so the document never silently proceeds to chunking with nothing in it.
type TextExtractor interface {
	// FileType returns the format this extractor handles.
	FileType() domain.FileType

	// Extract converts raw bytes to normalised text.
	Extract(ctx context.Context, content []byte) (string, error)
}

// ExtractorRegistry selects the extractor for a detected file type.
type ExtractorRegistry interface {
	// Register adds an extractor, replacing any previous one for the
	// same file type.
	Register(e TextExtractor)

	// Extract dispatches to the extractor for the detected type.
	// Fails with domain.ErrUnsupportedFormat for unknown types.
	Extract(ctx context.Context, fileType domain.FileType, content []byte) (string, error)
}
