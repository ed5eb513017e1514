// Package plaintext extracts text from plain text uploads.
package plaintext

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/doclane/doclane/internal/core/domain"
	"github.com/doclane/doclane/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// FileType returns the format this extractor handles.
func (e *Extractor) FileType() domain.FileType {
	return domain.FileTypePlain
}

// Extract converts raw bytes to text. Invalid UTF-8 sequences are
// dropped rather than failing the whole file; a file that is mostly
// binary fails as corrupt.
func (e *Extractor) Extract(_ context.Context, content []byte) (string, error) {
	if len(content) == 0 {
		return "", domain.ErrCorruptFile
	}

	text := string(content)
	if !utf8.ValidString(text) {
		cleaned := strings.ToValidUTF8(text, "")
		// More than half the bytes gone means this was never text.
		if len(cleaned) < len(text)/2 {
			return "", domain.ErrCorruptFile
		}
		text = cleaned
	}

	return text, nil
}
