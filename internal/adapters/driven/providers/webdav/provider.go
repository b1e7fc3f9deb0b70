// Package webdav stores backups on a WebDAV server such as Nextcloud.
// WebDAV has no per-object metadata, so each payload is accompanied by
// a JSON manifest sidecar.
package webdav

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"time"

	"github.com/studio-b12/gowebdav"

	"github.com/custodia-labs/quillsync-cli/internal/adapters/driven/providers"
	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quillsync-cli/internal/logger"
)

// davClient is the slice of gowebdav.Client the provider uses. Tests
// substitute a fake.
type davClient interface {
	Connect() error
	MkdirAll(path string, mode os.FileMode) error
	Write(path string, data []byte, mode os.FileMode) error
	Read(path string) ([]byte, error)
	ReadDir(path string) ([]os.FileInfo, error)
	Remove(path string) error
	Stat(path string) (os.FileInfo, error)
}

// Provider implements the Provider port over a WebDAV share.
type Provider struct {
	cfg    domain.ProviderConfig
	client davClient
	ready  bool
}

var _ driven.Provider = (*Provider)(nil)

// New creates a WebDAV provider. The client is built during Initialize.
func New(cfg domain.ProviderConfig) *Provider {
	return &Provider{cfg: cfg}
}

// NewWithClient creates a WebDAV provider on an explicit client.
func NewWithClient(client davClient, cfg domain.ProviderConfig) *Provider {
	return &Provider{cfg: cfg, client: client, ready: true}
}

// Name returns the configured destination name.
func (p *Provider) Name() string { return p.cfg.Name }

// Type returns the WebDAV provider type.
func (p *Provider) Type() domain.ProviderType { return domain.ProviderWebDAV }

// Initialize connects to the server and verifies credentials.
func (p *Provider) Initialize(cfg domain.ProviderConfig) bool {
	p.cfg = cfg
	p.client = gowebdav.NewClient(cfg.URL, cfg.Username, cfg.Password)

	if err := p.client.Connect(); err != nil {
		logger.Warn("Connecting to WebDAV server for %s failed: %v", cfg.Name, err)
		p.ready = false
		return false
	}
	p.ready = true
	return true
}

// Store uploads the payload and its manifest sidecar.
func (p *Provider) Store(ctx context.Context, artifact *domain.BackupArtifact) error {
	if !p.ready {
		return domain.ErrProviderNotReady
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	key := domain.DeriveStorageKey(p.cfg.Prefix, artifact.Metadata)
	if err := p.client.MkdirAll(path.Dir(key), 0o755); err != nil {
		return fmt.Errorf("creating remote directories for %s: %w", key, err)
	}
	if err := p.client.Write(key, artifact.Payload, 0o644); err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}

	manifest, err := providers.EncodeManifest(artifact.Metadata)
	if err != nil {
		return err
	}
	if err := p.client.Write(providers.ManifestKey(key), manifest, 0o644); err != nil {
		return fmt.Errorf("uploading manifest for %s: %w", key, err)
	}
	return nil
}

// List walks the share and decodes every manifest sidecar.
func (p *Provider) List(ctx context.Context) ([]domain.BackupMetadata, error) {
	if !p.ready {
		return nil, domain.ErrProviderNotReady
	}

	root := "/"
	if p.cfg.Prefix != "" {
		root = p.cfg.Prefix
	}

	var listing []domain.BackupMetadata
	if err := p.walk(ctx, root, &listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// walk recursively lists a directory, collecting manifests.
func (p *Provider) walk(ctx context.Context, dir string, listing *[]domain.BackupMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := p.client.ReadDir(dir)
	if err != nil {
		if isNotFound(err) {
			// Nothing backed up yet.
			return nil
		}
		return fmt.Errorf("listing %s: %w", dir, err)
	}

	for _, entry := range entries {
		full := path.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := p.walk(ctx, full, listing); err != nil {
				return err
			}
			continue
		}
		if !providers.IsManifestKey(full) {
			continue
		}

		data, err := p.client.Read(full)
		if err != nil {
			return fmt.Errorf("reading manifest %s: %w", full, err)
		}
		meta, err := providers.DecodeManifest(data)
		if err != nil {
			logger.Warn("Skipping corrupt manifest %s: %v", full, err)
			continue
		}
		*listing = append(*listing, meta)
	}
	return nil
}

// Fetch downloads the payload stored under a canonical key.
func (p *Provider) Fetch(ctx context.Context, key string) ([]byte, error) {
	if !p.ready {
		return nil, domain.ErrProviderNotReady
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := p.client.Read(providers.ApplyPrefix(p.cfg.Prefix, key))
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("object %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("downloading %s: %w", key, err)
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
		if err := p.client.Remove(target); err != nil && !isNotFound(err) {
			return fmt.Errorf("removing %s: %w", target, err)
		}
	}
	return nil
}

// LastModified returns the server-side modification time for a
// canonical key.
func (p *Provider) LastModified(ctx context.Context, key string) (time.Time, error) {
	if !p.ready {
		return time.Time{}, domain.ErrProviderNotReady
	}
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	info, err := p.client.Stat(providers.ApplyPrefix(p.cfg.Prefix, key))
	if err != nil {
		if isNotFound(err) {
			return time.Time{}, fmt.Errorf("object %s: %w", key, domain.ErrNotFound)
		}
		return time.Time{}, fmt.Errorf("stat %s: %w", key, err)
	}
	return info.ModTime(), nil
}

// isNotFound recognises both gowebdav's 404 status errors and plain
// fs.ErrNotExist wrappers.
func isNotFound(err error) bool {
	return gowebdav.IsErrNotFound(err) || errors.Is(err, fs.ErrNotExist)
}
