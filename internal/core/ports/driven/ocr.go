package driven

import "context"

// OCRBackend recognises text in images. This is an optional service -
// when nil, image uploads are rejected as unsupported.
type OCRBackend interface {
	// Recognise extracts text from image bytes. Recognising no text at
	// all is an error, not an empty success.
	Recognise(ctx context.Context, image []byte) (string, error)
}
