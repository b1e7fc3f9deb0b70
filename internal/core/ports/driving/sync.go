package driving

import (
	"context"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
)

// SyncReconciler compares local documents against remote backups and
// resolves each divergence by pushing or pulling.
type SyncReconciler interface {
	// ReconcileAll reconciles every document in the vault.
	ReconcileAll(ctx context.Context) (*domain.RunSummary, error)

	// ReconcileDocument reconciles a single document by ID.
	ReconcileDocument(ctx context.Context, id string) error
}
