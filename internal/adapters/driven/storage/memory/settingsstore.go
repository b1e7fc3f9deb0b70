package memory

import (
	"sync"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// SettingsStore is an in-memory implementation of driven.SettingsStore.
type SettingsStore struct {
	mu       sync.RWMutex
	settings domain.Settings
	saved    bool
}

// NewSettingsStore creates a new in-memory settings store.
func NewSettingsStore() *SettingsStore {
	return &SettingsStore{}
}

// Load returns the stored settings, or defaults if nothing has been saved.
func (s *SettingsStore) Load() (domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.saved {
		return domain.DefaultSettings(), nil
	}
	return s.settings, nil
}

// Save stores the settings.
func (s *SettingsStore) Save(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.saved = true
	return nil
}

// Path identifies the store for display purposes.
func (s *SettingsStore) Path() string {
	return "(in memory)"
}
