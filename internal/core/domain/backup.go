package domain

import (
	"path"
	"strings"
	"time"
)

// MetadataFormatVersion is stamped into every BackupMetadata record so
// future readers can detect older layouts.
const MetadataFormatVersion = 1

// BackupMetadata describes one stored backup object. It is the unit of
// truth both for deriving a storage key and for answering "does this
// backup correspond to document X".
//
// Two artifacts with the same RelativePath and Collection are the same
// logical object across all providers.
type BackupMetadata struct {
	// Timestamp is when the artifact was built (serialized as RFC 3339).
	Timestamp time.Time

	// FormatVersion is the metadata layout version.
	FormatVersion int

	// Collection is the vault collection name the document belongs to.
	Collection string

	// DocumentID identifies the source document within the collection.
	DocumentID string

	// Kind classifies the document (journal, page, asset).
	Kind DocumentKind

	// RelativePath is the canonical cross-provider key component,
	// e.g. "journals/2024_01_01.md".
	RelativePath string

	// FileName is the terminal path segment.
	FileName string

	// SizeBytes is the payload length.
	SizeBytes int64
}

// BackupArtifact is the serialized form of one document, ready for
// dispatch. Immutable once constructed; created per document per
// processing pass and discarded after dispatch.
type BackupArtifact struct {
	// DocumentID identifies the source document.
	DocumentID string

	// Payload is the serialized document content.
	Payload []byte

	// Metadata describes the artifact for storage and matching.
	Metadata BackupMetadata
}

// DeriveStorageKey computes the deterministic storage key for an artifact.
// The rule is identical across all providers so that the same logical
// object lands at the same key everywhere:
//
//   - RelativePath already starting with "<collection>/" is used as-is;
//   - otherwise RelativePath is prefixed with "<collection>/";
//   - with no RelativePath at all, the key falls back to
//     "<collection>/backups/<sanitized-timestamp>.archive".
//
// A non-empty prefix is prepended with a single "/" separator.
func DeriveStorageKey(prefix string, m BackupMetadata) string {
	key := m.RelativePath
	switch {
	case key == "":
		key = path.Join(m.Collection, "backups", sanitizeTimestamp(m.Timestamp)+".archive")
	case m.Collection != "" && strings.HasPrefix(key, m.Collection+"/"):
		// Already collection-qualified.
	default:
		key = m.Collection + "/" + key
	}

	if prefix != "" {
		key = strings.TrimSuffix(prefix, "/") + "/" + key
	}
	return key
}

// sanitizeTimestamp renders a timestamp as a key-safe path segment.
// Colons are not universally legal in object keys.
func sanitizeTimestamp(t time.Time) string {
	return strings.ReplaceAll(t.UTC().Format("2006-01-02T15-04-05Z"), ":", "-")
}

// MatchesPath reports whether this metadata record corresponds to the
// given relative path. Exact matches win; a suffix match accommodates
// legacy collection-qualified path variants.
func (m BackupMetadata) MatchesPath(relativePath string) bool {
	if relativePath == "" || m.RelativePath == "" {
		return false
	}
	if m.RelativePath == relativePath {
		return true
	}
	return strings.HasSuffix(m.RelativePath, "/"+relativePath)
}

// LatestMatch returns the most recent metadata record matching the given
// relative path, or false if none matches. Exact path matches are
// preferred over suffix matches regardless of recency.
func LatestMatch(catalog []BackupMetadata, relativePath string) (BackupMetadata, bool) {
	var (
		best      BackupMetadata
		found     bool
		bestExact bool
	)
	for _, m := range catalog {
		if !m.MatchesPath(relativePath) {
			continue
		}
		exact := m.RelativePath == relativePath
		switch {
		case !found,
			exact && !bestExact,
			exact == bestExact && m.Timestamp.After(best.Timestamp):
			best = m
			found = true
			bestExact = exact
		}
	}
	return best, found
}
