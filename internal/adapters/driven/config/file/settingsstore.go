// Package file persists application settings as a TOML file in the
// quillsync config directory.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// SettingsStore is a file-based implementation of driven.SettingsStore
// using TOML. Settings are stored in ~/.quillsync/config.toml unless a
// config directory is given.
type SettingsStore struct {
	mu       sync.Mutex
	filePath string
}

// settingsDoc is the on-disk TOML shape. Durations travel as strings
// ("15s") so hand-edited files stay readable.
type settingsDoc struct {
	VaultPath        string        `toml:"vault_path"`
	Collection       string        `toml:"collection,omitempty"`
	QuiescenceWindow string        `toml:"quiescence_window,omitempty"`
	SyncTolerance    string        `toml:"sync_tolerance,omitempty"`
	Providers        []providerDoc `toml:"providers,omitempty"`
}

type providerDoc struct {
	Name    string `toml:"name"`
	Type    string `toml:"type"`
	Enabled bool   `toml:"enabled"`
	Prefix  string `toml:"prefix,omitempty"`

	Endpoint  string `toml:"endpoint,omitempty"`
	Region    string `toml:"region,omitempty"`
	Bucket    string `toml:"bucket,omitempty"`
	AccessKey string `toml:"access_key,omitempty"`
	SecretKey string `toml:"secret_key,omitempty"`

	URL      string `toml:"url,omitempty"`
	Username string `toml:"username,omitempty"`
	Password string `toml:"password,omitempty"`

	RootPath string `toml:"root_path,omitempty"`
}

// NewSettingsStore creates a TOML-based settings store.
// If configDir is empty, defaults to ~/.quillsync/config.toml.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".quillsync")
	}

	// Credentials live in this file; keep it private.
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &SettingsStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Load reads settings from disk. A missing file yields defaults.
func (s *SettingsStore) Load() (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.DefaultSettings(), nil
		}
		return domain.Settings{}, err
	}

	var doc settingsDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return domain.Settings{}, fmt.Errorf("parsing %s: %w", s.filePath, err)
	}

	settings := domain.DefaultSettings()
	settings.VaultPath = doc.VaultPath
	settings.Collection = doc.Collection
	if d, err := time.ParseDuration(doc.QuiescenceWindow); err == nil && d > 0 {
		settings.QuiescenceWindow = d
	}
	if d, err := time.ParseDuration(doc.SyncTolerance); err == nil && d > 0 {
		settings.SyncTolerance = d
	}
	for _, p := range doc.Providers {
		settings.Providers = append(settings.Providers, domain.ProviderConfig{
			Name:      p.Name,
			Type:      domain.ProviderType(p.Type),
			Enabled:   p.Enabled,
			Prefix:    p.Prefix,
			Endpoint:  p.Endpoint,
			Region:    p.Region,
			Bucket:    p.Bucket,
			AccessKey: p.AccessKey,
			SecretKey: p.SecretKey,
			URL:       p.URL,
			Username:  p.Username,
			Password:  p.Password,
			RootPath:  p.RootPath,
		})
	}
	return settings, nil
}

// Save persists settings to disk with restricted permissions.
func (s *SettingsStore) Save(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := settingsDoc{
		VaultPath:        settings.VaultPath,
		Collection:       settings.Collection,
		QuiescenceWindow: settings.QuiescenceWindow.String(),
		SyncTolerance:    settings.SyncTolerance.String(),
	}
	for _, p := range settings.Providers {
		doc.Providers = append(doc.Providers, providerDoc{
			Name:      p.Name,
			Type:      p.Type.String(),
			Enabled:   p.Enabled,
			Prefix:    p.Prefix,
			Endpoint:  p.Endpoint,
			Region:    p.Region,
			Bucket:    p.Bucket,
			AccessKey: p.AccessKey,
			SecretKey: p.SecretKey,
			URL:       p.URL,
			Username:  p.Username,
			Password:  p.Password,
			RootPath:  p.RootPath,
		})
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// Path returns the settings file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}
