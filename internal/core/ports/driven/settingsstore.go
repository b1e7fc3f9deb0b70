package driven

import "github.com/custodia-labs/quillsync-cli/internal/core/domain"

// SettingsStore persists application settings.
// Implementations handle file format and defaulting.
type SettingsStore interface {
	// Load reads settings from storage. A missing settings file yields
	// defaults, not an error.
	Load() (domain.Settings, error)

	// Save persists settings to storage.
	Save(settings domain.Settings) error

	// Path returns the settings file path.
	Path() string
}
