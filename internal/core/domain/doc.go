// Package domain defines the core business entities for FundQA.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested financial document and its identity
//   - Chunk: A searchable unit within a document
//   - RetrievalCandidate: A scored chunk produced by hybrid retrieval
//   - ValidationResult: The validator's verdict on a generated answer
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
