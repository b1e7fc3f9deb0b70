package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *SettingsStore {
	t.Helper()
	store, err := NewSettingsStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestSettingsStore_Load(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		store := newTestStore(t)

		settings, err := store.Load()

		require.NoError(t, err)
		assert.Equal(t, domain.DefaultQuiescenceWindow, settings.QuiescenceWindow)
		assert.Equal(t, domain.DefaultSyncTolerance, settings.SyncTolerance)
		assert.Empty(t, settings.Providers)
	})

	t.Run("parses a full settings file", func(t *testing.T) {
		store := newTestStore(t)
		content := `
vault_path = "/home/user/notes"
quiescence_window = "30s"
sync_tolerance = "10s"

[[providers]]
name = "minio"
type = "objectstore"
enabled = true
endpoint = "http://127.0.0.1:9000"
region = "us-east-1"
bucket = "backups"
access_key = "key"
secret_key = "secret"

[[providers]]
name = "usb"
type = "filesystem"
enabled = false
root_path = "/mnt/usb"
`
		require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0600))

		settings, err := store.Load()

		require.NoError(t, err)
		assert.Equal(t, "/home/user/notes", settings.VaultPath)
		assert.Equal(t, 30*time.Second, settings.QuiescenceWindow)
		assert.Equal(t, 10*time.Second, settings.SyncTolerance)
		require.Len(t, settings.Providers, 2)
		assert.Equal(t, domain.ProviderObjectStore, settings.Providers[0].Type)
		assert.Equal(t, "http://127.0.0.1:9000", settings.Providers[0].Endpoint)
		assert.False(t, settings.Providers[1].Enabled)
	})

	t.Run("invalid durations fall back to defaults", func(t *testing.T) {
		store := newTestStore(t)
		content := `
vault_path = "/notes"
quiescence_window = "soon"
`
		require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0600))

		settings, err := store.Load()

		require.NoError(t, err)
		assert.Equal(t, domain.DefaultQuiescenceWindow, settings.QuiescenceWindow)
	})

	t.Run("malformed toml fails", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, os.WriteFile(store.Path(), []byte("vault_path = ["), 0600))

		_, err := store.Load()

		assert.Error(t, err)
	})
}

func TestSettingsStore_Save(t *testing.T) {
	t.Run("round-trips settings", func(t *testing.T) {
		store := newTestStore(t)
		settings := domain.Settings{
			VaultPath:        "/home/user/notes",
			Collection:       "notes",
			QuiescenceWindow: 20 * time.Second,
			SyncTolerance:    5 * time.Second,
			Providers: []domain.ProviderConfig{{
				Name:     "nextcloud",
				Type:     domain.ProviderWebDAV,
				Enabled:  true,
				URL:      "https://cloud.example.com/remote.php/dav",
				Username: "user",
				Password: "secret",
			}},
		}

		require.NoError(t, store.Save(settings))

		loaded, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, settings, loaded)
	})

	t.Run("settings file has restricted permissions", func(t *testing.T) {
		store := newTestStore(t)

		require.NoError(t, store.Save(domain.DefaultSettings()))

		info, err := os.Stat(store.Path())
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})
}

func TestNewSettingsStore(t *testing.T) {
	t.Run("creates the config directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "config")

		store, err := NewSettingsStore(dir)

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
		info, statErr := os.Stat(dir)
		require.NoError(t, statErr)
		assert.True(t, info.IsDir())
	})
}
