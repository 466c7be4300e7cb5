// Package domain defines the core business entities for styleaudit.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Guide: A style-guide document converted to normalised text
//   - Chunk: An embeddable slice of a guide
//   - IndexSnapshot: The embedded chunks built from one active guide set
//   - DocumentChunk: A unit of the document under audit
//   - AuditFinding: The critique and rewrite produced for one DocumentChunk
//   - Metrics: The five qualitative scores derived from a report
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
