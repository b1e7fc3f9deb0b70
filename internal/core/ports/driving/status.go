package driving

import (
	"context"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
)

// StatusReporter exposes run history and provider readiness for the
// status command.
type StatusReporter interface {
	// RecentRuns returns the most recent runs, newest first.
	RecentRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// ProviderStates reports each configured provider's readiness,
	// keyed by destination name.
	ProviderStates() map[string]bool
}
