package driven

import (
	"context"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
)

// RunHistoryStore persists run records for the status command.
type RunHistoryStore interface {
	// Record stores a completed run.
	Record(ctx context.Context, record domain.RunRecord) error

	// Recent returns the most recent runs, newest first.
	Recent(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Prune removes all but the newest keep records.
	Prune(ctx context.Context, keep int) error
}
