package driving

import (
	"context"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
)

// BackupOrchestrator coordinates backup runs across all enabled providers.
type BackupOrchestrator interface {
	// FullBackup backs up every document in the vault.
	FullBackup(ctx context.Context) (*domain.RunSummary, error)

	// DocumentBackup backs up a single document by ID.
	DocumentBackup(ctx context.Context, id string) error

	// ProcessChanges backs up the documents affected by a coalesced
	// change batch, in first-seen order.
	ProcessChanges(ctx context.Context, events []domain.ChangeEvent) error

	// ApplySettings reconfigures providers from new settings. Providers
	// whose configuration is unchanged keep their connections.
	ApplySettings(ctx context.Context, settings domain.Settings) error
}
