package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quillsync-cli/internal/logger"
)

// RemoteCatalog caches provider backup listings so a reconciliation
// pass over N documents performs one List per provider instead of N.
// Entries live until explicitly invalidated: the reconciler invalidates
// at the end of each pass, and the orchestrator invalidates a
// destination whenever its configuration changes.
type RemoteCatalog struct {
	mu    sync.Mutex
	cache map[string][]domain.BackupMetadata
	group singleflight.Group
}

// NewRemoteCatalog creates an empty catalog cache.
func NewRemoteCatalog() *RemoteCatalog {
	return &RemoteCatalog{
		cache: make(map[string][]domain.BackupMetadata),
	}
}

// GetOrFetch returns the cached listing for a provider, fetching it on
// first use. Concurrent callers for the same provider share a single
// List call.
func (c *RemoteCatalog) GetOrFetch(ctx context.Context, provider driven.Provider) ([]domain.BackupMetadata, error) {
	name := provider.Name()

	c.mu.Lock()
	if listing, ok := c.cache[name]; ok {
		c.mu.Unlock()
		return listing, nil
	}
	c.mu.Unlock()

	result, err, _ := c.group.Do(name, func() (any, error) {
		logger.Debug("Fetching backup catalog from %s", name)
		listing, err := provider.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing backups on %s: %w", name, err)
		}

		c.mu.Lock()
		c.cache[name] = listing
		c.mu.Unlock()

		return listing, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.BackupMetadata), nil
}

// Invalidate drops the cached listing for one destination.
func (c *RemoteCatalog) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, name)
}

// InvalidateAll drops every cached listing.
func (c *RemoteCatalog) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string][]domain.BackupMetadata)
}
