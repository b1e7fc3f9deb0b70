// Package filesystem stores backups on a local or mounted filesystem,
// e.g. an external drive or an NFS mount.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/custodia-labs/quillsync-cli/internal/adapters/driven/providers"
	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quillsync-cli/internal/logger"
)

// Provider implements the Provider port over a directory tree. Each
// payload gets a JSON manifest sidecar so List can reconstruct full
// metadata.
type Provider struct {
	fs    afero.Fs
	cfg   domain.ProviderConfig
	ready bool
}

var _ driven.Provider = (*Provider)(nil)

// New creates a filesystem provider backed by the OS filesystem.
func New(cfg domain.ProviderConfig) *Provider {
	return NewWithFs(afero.NewOsFs(), cfg)
}

// NewWithFs creates a filesystem provider on an explicit afero
// filesystem. Tests use an in-memory one.
func NewWithFs(fsys afero.Fs, cfg domain.ProviderConfig) *Provider {
	return &Provider{fs: fsys, cfg: cfg}
}

// Name returns the configured destination name.
func (p *Provider) Name() string { return p.cfg.Name }

// Type returns the filesystem provider type.
func (p *Provider) Type() domain.ProviderType { return domain.ProviderFilesystem }

// Initialize ensures the root directory exists and is writable.
func (p *Provider) Initialize(cfg domain.ProviderConfig) bool {
	p.cfg = cfg
	if err := p.fs.MkdirAll(cfg.RootPath, 0o755); err != nil {
		logger.Warn("Creating backup root %s failed: %v", cfg.RootPath, err)
		p.ready = false
		return false
	}
	p.ready = true
	return true
}

// Store writes the payload and its manifest sidecar.
func (p *Provider) Store(ctx context.Context, artifact *domain.BackupArtifact) error {
	if !p.ready {
		return domain.ErrProviderNotReady
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	key := domain.DeriveStorageKey(p.cfg.Prefix, artifact.Metadata)
	full := p.path(key)
	if err := p.fs.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("creating directories for %s: %w", key, err)
	}
	if err := afero.WriteFile(p.fs, full, artifact.Payload, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}

	manifest, err := providers.EncodeManifest(artifact.Metadata)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(p.fs, p.path(providers.ManifestKey(key)), manifest, 0o644); err != nil {
		return fmt.Errorf("writing manifest for %s: %w", key, err)
	}
	return nil
}

// List walks the root and decodes every manifest sidecar.
func (p *Provider) List(ctx context.Context) ([]domain.BackupMetadata, error) {
	if !p.ready {
		return nil, domain.ErrProviderNotReady
	}

	var listing []domain.BackupMetadata
	err := afero.Walk(p.fs, p.cfg.RootPath, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if info.IsDir() || !providers.IsManifestKey(path) {
			return nil
		}

		data, err := afero.ReadFile(p.fs, path)
		if err != nil {
			return fmt.Errorf("reading manifest %s: %w", path, err)
		}
		meta, err := providers.DecodeManifest(data)
		if err != nil {
			logger.Warn("Skipping corrupt manifest %s: %v", path, err)
			return nil
		}
		listing = append(listing, meta)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing backups under %s: %w", p.cfg.RootPath, err)
	}
	return listing, nil
}

// Fetch reads the payload stored under a canonical key.
func (p *Provider) Fetch(ctx context.Context, key string) ([]byte, error) {
	if !p.ready {
		return nil, domain.ErrProviderNotReady
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := afero.ReadFile(p.fs, p.path(providers.ApplyPrefix(p.cfg.Prefix, key)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return content, nil
}

// Erase removes the payload and its manifest. Missing objects are not
// an error.
func (p *Provider) Erase(ctx context.Context, key string) error {
	if !p.ready {
		return domain.ErrProviderNotReady
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	prefixed := providers.ApplyPrefix(p.cfg.Prefix, key)
	for _, target := range []string{prefixed, providers.ManifestKey(prefixed)} {
		if err := p.fs.Remove(p.path(target)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", target, err)
		}
	}
	return nil
}

// LastModified returns the file's modification time for a canonical key.
func (p *Provider) LastModified(ctx context.Context, key string) (time.Time, error) {
	if !p.ready {
		return time.Time{}, domain.ErrProviderNotReady
	}
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	info, err := p.fs.Stat(p.path(providers.ApplyPrefix(p.cfg.Prefix, key)))
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, fmt.Errorf("object %s: %w", key, domain.ErrNotFound)
		}
		return time.Time{}, fmt.Errorf("stat %s: %w", key, err)
	}
	return info.ModTime(), nil
}

// path maps a storage key to an absolute filesystem path.
func (p *Provider) path(key string) string {
	return filepath.Join(p.cfg.RootPath, filepath.FromSlash(key))
}
