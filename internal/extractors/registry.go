package extractors

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/doclane/doclane/internal/core/domain"
	"github.com/doclane/doclane/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry dispatches extraction to the extractor registered for a
// detected file type.
type Registry struct {
	mu         sync.RWMutex
	extractors map[domain.FileType]driven.TextExtractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[domain.FileType]driven.TextExtractor),
	}
}

// Register adds an extractor, replacing any previous one for the same
// file type.
func (r *Registry) Register(e driven.TextExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[e.FileType()] = e
}

// Extract dispatches to the extractor for the detected type and
// normalises its output. Unknown or unregistered types fail with
// domain.ErrUnsupportedFormat. Extraction that yields only whitespace
// fails with domain.ErrCorruptFile so the document never proceeds to
// chunking with no text.
func (r *Registry) Extract(ctx context.Context, fileType domain.FileType, content []byte) (string, error) {
	r.mu.RLock()
	extractor, ok := r.extractors[fileType]
	r.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, fileType)
	}

	text, err := extractor.Extract(ctx, content)
	if err != nil {
		return "", err
	}

	text = NormaliseText(text)
	if text == "" {
		return "", fmt.Errorf("%w: no text extracted", domain.ErrCorruptFile)
	}
	return text, nil
}

// NormaliseText canonicalises extracted text: CRLF to LF, trimmed edges,
// runs of three or more newlines collapsed to two. Keeping this in one
// place makes chunk offsets stable across extractors.
func NormaliseText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(text)
}
