package driven

import (
	"context"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
)

// VaultWatcher observes the local vault for file changes.
type VaultWatcher interface {
	// Start begins watching and returns a channel of change events.
	// The channel is closed when the context is cancelled or the
	// watcher is closed.
	Start(ctx context.Context) (<-chan domain.ChangeEvent, error)

	// Close releases watch resources.
	Close() error
}
