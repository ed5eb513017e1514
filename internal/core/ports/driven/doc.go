// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the pipeline to function:
//
//   - TextExtractor: Converts raw file bytes into normalised text
//   - ExtractorRegistry: Selects the extractor for a detected file type
//   - EmbeddingService: Generates vector embeddings for chunks and queries
//   - LLMService: Generative model calls (batch and streaming)
//   - VectorIndex: Per-document vector storage and similarity search
//   - DocumentStore: Document, chunk and summary persistence
//   - BlobStore: Raw upload storage
//
// # Optional Interfaces
//
//   - OCRBackend: Image text recognition. Without it, image uploads fail
//     with ErrUnsupportedFormat instead of ErrOCRFailure.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
