package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Extraction errors. All are terminal: the document fails rather
	// than proceeding with no text.

	// ErrUnsupportedFormat indicates the file type is not recognised.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrCorruptFile indicates the file could not be parsed.
	ErrCorruptFile = errors.New("corrupt file")

	// ErrOCRFailure indicates text recognition on an image produced
	// nothing usable.
	ErrOCRFailure = errors.New("ocr failure")

	// Chunking errors.

	// ErrEmptyInput indicates the normalised text is empty or
	// whitespace-only.
	ErrEmptyInput = errors.New("empty input")

	// Provider errors.

	// ErrInputTooLong indicates text exceeds the provider's input limit.
	ErrInputTooLong = errors.New("input too long")

	// ErrProviderUnavailable indicates a transient provider failure
	// (network, timeout, rate limit). Safe to retry with backoff.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrProviderRejected indicates the provider refused the request
	// (invalid content, auth failure). Never retried.
	ErrProviderRejected = errors.New("provider rejected request")

	// ErrGenerationFailure indicates the generative model call failed
	// terminally, after any retries were exhausted.
	ErrGenerationFailure = errors.New("generation failure")

	// Query-time errors.

	// ErrDocumentNotReady indicates a query against a document whose
	// status is not ready. Reported synchronously, never blocks.
	ErrDocumentNotReady = errors.New("document not ready")

	// ErrEmptyIndex indicates the document has zero indexed chunks.
	ErrEmptyIndex = errors.New("no indexed chunks for document")

	// ErrEmptyDocument indicates summarisation was requested for a
	// document with no chunks.
	ErrEmptyDocument = errors.New("empty document")

	// Consistency errors.

	// ErrIndexMismatch indicates the vector index and metadata store
	// disagree about a document. Queued for reconciliation by the
	// expiry sweep, never silently dropped.
	ErrIndexMismatch = errors.New("index and metadata out of sync")
)

// IsTransient reports whether err is worth retrying with backoff.
func IsTransient(err error) bool {
	return errors.Is(err, ErrProviderUnavailable)
}

// IsInputError reports whether err is caused by the uploaded content
// itself, so the document should fail without retry.
func IsInputError(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrCorruptFile) ||
		errors.Is(err, ErrOCRFailure) ||
		errors.Is(err, ErrEmptyInput)
}
