// Package domain defines the core business entities for doclane.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded document and its processing lifecycle
//   - Chunk: The unit of embedding and retrieval within a document
//   - Summary: A generated structured summary of a document
//   - RetrievalResult: Ranked chunks returned for a query
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
