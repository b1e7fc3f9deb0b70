package domain

import (
	"fmt"
	"time"
)

// ProviderType identifies a storage backend variant. The set is closed:
// provider construction goes through a registry keyed by type, never
// through runtime capability probing.
type ProviderType string

// Available provider types.
const (
	// ProviderObjectStore is an S3-compatible object storage backend.
	ProviderObjectStore ProviderType = "objectstore"

	// ProviderWebDAV is a WebDAV server backend.
	ProviderWebDAV ProviderType = "webdav"

	// ProviderFilesystem is a local or mounted filesystem backend.
	ProviderFilesystem ProviderType = "filesystem"
)

// IsValid returns true if the provider type is recognised.
func (t ProviderType) IsValid() bool {
	switch t {
	case ProviderObjectStore, ProviderWebDAV, ProviderFilesystem:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t ProviderType) String() string {
	return string(t)
}

// ProviderConfig holds one storage destination's configuration.
// Only the field group matching Type is consulted.
type ProviderConfig struct {
	// Name uniquely identifies this destination in settings and logs.
	Name string

	// Type selects the backend variant.
	Type ProviderType

	// Enabled toggles the destination without deleting its config.
	Enabled bool

	// Prefix is prepended to every derived storage key.
	Prefix string

	// Object storage fields.
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string

	// WebDAV fields.
	URL      string
	Username string
	Password string

	// Filesystem fields.
	RootPath string
}

// Validate checks the field group required by the configured type.
// A failing config is excluded from the enabled set, not a fatal error.
func (c ProviderConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: provider name is required", ErrInvalidInput)
	}
	switch c.Type {
	case ProviderObjectStore:
		if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
			return fmt.Errorf("%w: objectstore requires bucket, access_key and secret_key", ErrInvalidInput)
		}
	case ProviderWebDAV:
		if c.URL == "" || c.Username == "" {
			return fmt.Errorf("%w: webdav requires url and username", ErrInvalidInput)
		}
	case ProviderFilesystem:
		if c.RootPath == "" {
			return fmt.Errorf("%w: filesystem requires root_path", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedType, c.Type)
	}
	return nil
}

// Fingerprint condenses the fields that require provider re-initialization
// when changed. ApplySettings re-initializes a provider only when its
// fingerprint differs from the running one.
func (c ProviderConfig) Fingerprint() string {
	return fmt.Sprintf("%s|%s|%t|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s",
		c.Name, c.Type, c.Enabled, c.Prefix,
		c.Endpoint, c.Region, c.Bucket, c.AccessKey, c.SecretKey,
		c.URL, c.Username, c.Password, c.RootPath)
}

// DefaultQuiescenceWindow is the inactivity period required before a
// buffered change set is processed.
const DefaultQuiescenceWindow = 15 * time.Second

// Settings holds all application settings.
type Settings struct {
	// VaultPath is the root of the local markdown vault.
	VaultPath string

	// Collection names the vault collection, used as the canonical
	// storage-key component across all providers. Empty means derive
	// the name from the vault directory.
	Collection string

	// QuiescenceWindow is the debounce window for coalescing edits.
	QuiescenceWindow time.Duration

	// SyncTolerance treats near-simultaneous timestamps as equal.
	SyncTolerance time.Duration

	// Providers lists all configured storage destinations.
	Providers []ProviderConfig
}

// DefaultSettings returns settings with sensible defaults.
// Providers are left unconfigured; users add them via settings.
func DefaultSettings() Settings {
	return Settings{
		QuiescenceWindow: DefaultQuiescenceWindow,
		SyncTolerance:    DefaultSyncTolerance,
	}
}

// EnabledProviders returns the configs that are enabled and valid.
func (s Settings) EnabledProviders() []ProviderConfig {
	var enabled []ProviderConfig
	for _, p := range s.Providers {
		if p.Enabled && p.Validate() == nil {
			enabled = append(enabled, p)
		}
	}
	return enabled
}
