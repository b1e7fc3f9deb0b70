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
//   - Provider: Stores backup artifacts at one destination
//   - NoteStore: Local markdown vault access
//   - SettingsStore: Application configuration
//   - Clock: Wall time and deferred execution
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunHistoryStore: Run records for the status command
//   - VaultWatcher: Filesystem watching for watch mode
//   - Notifier: User-facing run notifications (defaults to stderr)
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or provider package
package driven
