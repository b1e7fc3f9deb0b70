package domain

import "time"

// DocumentKind classifies a vault document for path derivation.
type DocumentKind string

// Available document kinds.
const (
	// KindJournal is a dated journal document, keyed under journals/.
	KindJournal DocumentKind = "journal"

	// KindPage is a regular named page, keyed under pages/.
	KindPage DocumentKind = "page"

	// KindAsset is an attachment referenced by pages, keyed under assets/.
	KindAsset DocumentKind = "asset"
)

// IsValid returns true if the kind is recognised.
func (k DocumentKind) IsValid() bool {
	switch k {
	case KindJournal, KindPage, KindAsset:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k DocumentKind) String() string {
	return string(k)
}

// Document represents a vault document as seen by the backup engine.
// Content is loaded separately through the NoteStore port; listings
// carry metadata only.
type Document struct {
	// ID is the unique identifier within the collection.
	ID string

	// Name is the human-readable document name (journal date or page title).
	Name string

	// Kind classifies the document (journal, page, asset).
	Kind DocumentKind

	// ModifiedAt is the local last-modification time, compared against
	// remote backup timestamps during reconciliation.
	ModifiedAt time.Time

	// Container marks tag/system pages that exist only to group others.
	// Container documents are filtered out of backups.
	Container bool
}
