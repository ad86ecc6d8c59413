// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ChunkStore: Document and chunk persistence
//   - LexicalIndex: BM25 keyword scoring over chunk text
//   - DenseIndex: Cosine similarity scoring over chunk embeddings
//   - PageExtractor: Turns uploaded files into per-page plain text
//   - GenerationService: The external text-completion collaborator
//   - SettingsStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, dense
//     retrieval contributes nothing and ranking is lexical-only.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
