// Package providers holds code shared by the storage provider adapters:
// the sidecar manifest format and the rate-limiting decorator.
//
// Object storage can attach metadata directly to objects; WebDAV and
// plain filesystems cannot, so those providers write a JSON manifest
// next to each payload and reconstruct BackupMetadata from it when
// listing.
package providers

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
)

// ManifestSuffix marks sidecar manifest objects.
const ManifestSuffix = ".meta.json"

// manifest is the serialized sidecar form of BackupMetadata. The
// timestamp travels as a string so a corrupt value degrades to a zero
// time instead of failing the whole listing.
type manifest struct {
	Timestamp     string `json:"timestamp"`
	FormatVersion int    `json:"format_version"`
	Collection    string `json:"collection"`
	DocumentID    string `json:"document_id"`
	Kind          string `json:"kind"`
	RelativePath  string `json:"relative_path"`
	FileName      string `json:"file_name"`
	SizeBytes     int64  `json:"size_bytes"`
}

// EncodeManifest serializes metadata for sidecar storage.
func EncodeManifest(m domain.BackupMetadata) ([]byte, error) {
	data, err := json.MarshalIndent(manifest{
		Timestamp:     m.Timestamp.UTC().Format(time.RFC3339),
		FormatVersion: m.FormatVersion,
		Collection:    m.Collection,
		DocumentID:    m.DocumentID,
		Kind:          m.Kind.String(),
		RelativePath:  m.RelativePath,
		FileName:      m.FileName,
		SizeBytes:     m.SizeBytes,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding manifest for %s: %w", m.RelativePath, err)
	}
	return data, nil
}

// DecodeManifest parses a sidecar manifest. A malformed timestamp
// yields a zero Timestamp; reconciliation then treats the local copy as
// newer rather than pulling content of unknown age.
func DecodeManifest(data []byte) (domain.BackupMetadata, error) {
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return domain.BackupMetadata{}, fmt.Errorf("decoding manifest: %w", err)
	}

	ts, err := time.Parse(time.RFC3339, m.Timestamp)
	if err != nil {
		ts = time.Time{}
	}

	return domain.BackupMetadata{
		Timestamp:     ts,
		FormatVersion: m.FormatVersion,
		Collection:    m.Collection,
		DocumentID:    m.DocumentID,
		Kind:          domain.DocumentKind(m.Kind),
		RelativePath:  m.RelativePath,
		FileName:      m.FileName,
		SizeBytes:     m.SizeBytes,
	}, nil
}

// ManifestKey returns the sidecar key for a payload key.
func ManifestKey(key string) string {
	return key + ManifestSuffix
}

// IsManifestKey reports whether a key names a sidecar manifest.
func IsManifestKey(key string) bool {
	return strings.HasSuffix(key, ManifestSuffix)
}

// ApplyPrefix maps a canonical key to this destination's storage key.
// Equivalent to domain.DeriveStorageKey's prefix handling.
func ApplyPrefix(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return strings.TrimSuffix(prefix, "/") + "/" + key
}
