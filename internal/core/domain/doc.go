// Package domain defines the core business entities for QuillSync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A vault document (journal, page or asset)
//   - ChangeEvent: A fine-grained content-change notification
//   - BackupArtifact: Serialized bytes plus metadata, ready for storage
//   - BackupMetadata: The unit of truth for storage keys and matching
//   - DispatchResult: Aggregated multi-provider store outcome
//   - SyncDecision: Push/pull/no-op verdict per document per provider
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
