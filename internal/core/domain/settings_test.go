package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProviderConfig_Validate(t *testing.T) {
	t.Run("valid objectstore config", func(t *testing.T) {
		cfg := ProviderConfig{
			Name:      "minio",
			Type:      ProviderObjectStore,
			Bucket:    "backups",
			AccessKey: "key",
			SecretKey: "secret",
		}

		assert.NoError(t, cfg.Validate())
	})

	t.Run("objectstore missing bucket", func(t *testing.T) {
		cfg := ProviderConfig{
			Name:      "minio",
			Type:      ProviderObjectStore,
			AccessKey: "key",
			SecretKey: "secret",
		}

		assert.ErrorIs(t, cfg.Validate(), ErrInvalidInput)
	})

	t.Run("valid webdav config", func(t *testing.T) {
		cfg := ProviderConfig{
			Name:     "nextcloud",
			Type:     ProviderWebDAV,
			URL:      "https://cloud.example.com/remote.php/dav",
			Username: "user",
		}

		assert.NoError(t, cfg.Validate())
	})

	t.Run("webdav missing url", func(t *testing.T) {
		cfg := ProviderConfig{Name: "nextcloud", Type: ProviderWebDAV, Username: "user"}

		assert.ErrorIs(t, cfg.Validate(), ErrInvalidInput)
	})

	t.Run("valid filesystem config", func(t *testing.T) {
		cfg := ProviderConfig{Name: "usb", Type: ProviderFilesystem, RootPath: "/mnt/usb"}

		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing name", func(t *testing.T) {
		cfg := ProviderConfig{Type: ProviderFilesystem, RootPath: "/mnt/usb"}

		assert.ErrorIs(t, cfg.Validate(), ErrInvalidInput)
	})

	t.Run("unknown type", func(t *testing.T) {
		cfg := ProviderConfig{Name: "x", Type: "carrier-pigeon"}

		assert.ErrorIs(t, cfg.Validate(), ErrUnsupportedType)
	})
}

func TestProviderConfig_Fingerprint(t *testing.T) {
	t.Run("identical configs share a fingerprint", func(t *testing.T) {
		a := ProviderConfig{Name: "fs", Type: ProviderFilesystem, RootPath: "/mnt"}
		b := ProviderConfig{Name: "fs", Type: ProviderFilesystem, RootPath: "/mnt"}

		assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	})

	t.Run("credential change alters the fingerprint", func(t *testing.T) {
		a := ProviderConfig{Name: "dav", Type: ProviderWebDAV, URL: "u", Username: "x", Password: "one"}
		b := a
		b.Password = "two"

		assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	})

	t.Run("enablement change alters the fingerprint", func(t *testing.T) {
		a := ProviderConfig{Name: "fs", Type: ProviderFilesystem, RootPath: "/mnt", Enabled: true}
		b := a
		b.Enabled = false

		assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	})
}

func TestSettings_EnabledProviders(t *testing.T) {
	t.Run("filters disabled and invalid configs", func(t *testing.T) {
		settings := Settings{
			Providers: []ProviderConfig{
				{Name: "fs", Type: ProviderFilesystem, RootPath: "/mnt", Enabled: true},
				{Name: "off", Type: ProviderFilesystem, RootPath: "/mnt2", Enabled: false},
				{Name: "broken", Type: ProviderWebDAV, Enabled: true}, // missing url
			},
		}

		enabled := settings.EnabledProviders()

		assert.Len(t, enabled, 1)
		assert.Equal(t, "fs", enabled[0].Name)
	})
}

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	assert.Equal(t, 15*time.Second, settings.QuiescenceWindow)
	assert.Equal(t, 5*time.Second, settings.SyncTolerance)
	assert.Empty(t, settings.Providers)
}
