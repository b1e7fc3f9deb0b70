package domain

import "time"

// ChangeOp is the kind of edit a ChangeEvent describes.
type ChangeOp string

// Available change operations.
const (
	// OpCreate indicates new content appeared.
	OpCreate ChangeOp = "create"

	// OpModify indicates existing content changed.
	OpModify ChangeOp = "modify"

	// OpDelete indicates content was removed.
	OpDelete ChangeOp = "delete"
)

// ChangeEvent is a fine-grained content-change notification. Events are
// ephemeral: they are owned by the coalescer for the duration of one
// quiescence window and never persisted.
type ChangeEvent struct {
	// ID uniquely identifies the event (diagnostics only).
	ID string

	// DocumentID is the affected document, when the host could resolve it.
	// Empty when the event must be resolved via Path.
	DocumentID string

	// Path is the host-specific location the change was observed at.
	Path string

	// Op is the operation that occurred.
	Op ChangeOp

	// OccurredAt is when the edit was observed.
	OccurredAt time.Time
}

// AffectedDocuments returns the ordered, de-duplicated set of document IDs
// referenced by a batch of events, preserving first-seen order. Events with
// no resolvable document are skipped.
func AffectedDocuments(events []ChangeEvent) []string {
	seen := make(map[string]struct{}, len(events))
	var ids []string
	for _, ev := range events {
		id := ev.DocumentID
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
