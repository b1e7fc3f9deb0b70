package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
)

// Provider stores backup artifacts at a remote or local destination.
// Each provider type (objectstore, webdav, filesystem) implements this
// interface. Providers are independent: a failure in one never affects
// dispatch to the others.
type Provider interface {
	// Name returns the configured destination name.
	Name() string

	// Type returns the provider type identifier.
	Type() domain.ProviderType

	// Initialize prepares the provider from its configuration.
	// Returns true if the provider is ready to accept operations.
	// A false return marks the provider unavailable; operations on an
	// uninitialized provider fail with ErrProviderNotReady.
	Initialize(cfg domain.ProviderConfig) bool

	// Store writes an artifact under its derived storage key, attaching
	// the artifact's metadata so List can reconstruct it later.
	Store(ctx context.Context, artifact *domain.BackupArtifact) error

	// List enumerates all backup records at this destination.
	List(ctx context.Context) ([]domain.BackupMetadata, error)

	// Fetch retrieves the payload stored under a canonical key, as
	// produced by domain.DeriveStorageKey with an empty prefix. The
	// provider applies its own configured prefix internally, so the
	// same canonical key addresses the same logical object everywhere.
	// Returns ErrNotFound if no object exists at the key.
	Fetch(ctx context.Context, key string) ([]byte, error)

	// Erase removes the object stored under a canonical key.
	// Erasing a missing key is not an error.
	Erase(ctx context.Context, key string) error

	// LastModified returns the storage-side modification time for a
	// canonical key. Returns ErrNotFound if no object exists at the key.
	LastModified(ctx context.Context, key string) (time.Time, error)
}

// ProviderFactory creates a provider from its configuration.
// The registry holds one factory per provider type.
type ProviderFactory func(cfg domain.ProviderConfig) Provider
