// Package image extracts text from image uploads via an OCR backend.
package image

import (
	"context"
	"fmt"
	"strings"

	"github.com/doclane/doclane/internal/core/domain"
	"github.com/doclane/doclane/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles image documents by running an OCR pass.
type Extractor struct {
	ocr driven.OCRBackend
}

// New creates a new image extractor backed by the given OCR service.
func New(ocr driven.OCRBackend) *Extractor {
	return &Extractor{ocr: ocr}
}

// FileType returns the format this extractor handles.
func (e *Extractor) FileType() domain.FileType {
	return domain.FileTypeImage
}

// Extract runs OCR over the image. Failure to recognise any text is an
// error, never an empty success.
func (e *Extractor) Extract(ctx context.Context, content []byte) (string, error) {
	if e.ocr == nil {
		return "", fmt.Errorf("%w: no ocr backend configured", domain.ErrUnsupportedFormat)
	}
	if len(content) == 0 {
		return "", fmt.Errorf("%w: empty image", domain.ErrCorruptFile)
	}

	text, err := e.ocr.Recognise(ctx, content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrOCRFailure, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no text recognised", domain.ErrOCRFailure)
	}

	return text, nil
}
