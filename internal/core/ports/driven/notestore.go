package driven

import (
	"context"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
)

// NoteStore provides access to the local markdown vault.
// The document ID is the vault-relative file path, so IDs are stable
// across processes and double as reconciliation keys.
type NoteStore interface {
	// ListDocuments returns every document in the vault.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// GetDocument returns a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetContent returns the raw file content for a document.
	// Returns ErrNotFound if the document doesn't exist.
	GetContent(ctx context.Context, id string) ([]byte, error)

	// UpdateContent overwrites a document's content, creating the file
	// and any missing parent directories when needed.
	UpdateContent(ctx context.Context, id string, content []byte) error

	// Collection returns the vault's collection name.
	// Returns ErrNoCollection when the vault has no resolvable name.
	Collection() (string, error)
}

// Notifier surfaces run outcomes to the user.
type Notifier interface {
	// Notify emits a message at the given level.
	Notify(level domain.NotifyLevel, message string)
}
