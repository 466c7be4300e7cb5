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
//   - GuideSource: Loads the style-guide corpus as normalised text
//   - Normaliser: Transforms raw guide files into text
//   - NormaliserRegistry: Selects appropriate normaliser
//   - HiddenGuideStore: Hidden-guide set persistence
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndex: Vector storage/search for one index snapshot
//   - PostProcessor: Splits guides into chunks
//   - ReasoningAgent: Tool-using model that critiques document chunks
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - IndexSnapshotStore: Persists built snapshots so restarts skip re-embedding.
//   - ReportStore: Keeps audit report history.
//   - StatusSink: Receives progress messages during an audit.
//   - PromptStore: User-editable prompt templates. Defaults are embedded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
