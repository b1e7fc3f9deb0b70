package services

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quillsync-cli/internal/logger"
)

// ProviderRegistry holds the live providers, creating them from
// configuration through per-type factories. Applying new settings only
// re-initializes the providers whose configuration actually changed, so
// an untouched destination keeps its connections.
type ProviderRegistry struct {
	mu        sync.RWMutex
	factories map[domain.ProviderType]driven.ProviderFactory
	entries   map[string]*registryEntry
	order     []string
}

type registryEntry struct {
	provider    driven.Provider
	fingerprint string
	ready       bool
}

// NewProviderRegistry creates a registry with the given factories.
func NewProviderRegistry(factories map[domain.ProviderType]driven.ProviderFactory) *ProviderRegistry {
	return &ProviderRegistry{
		factories: factories,
		entries:   make(map[string]*registryEntry),
	}
}

// Apply reconciles the live providers against the enabled configs in
// settings. Returns the names of destinations that were (re)initialized
// or removed, so callers can invalidate cached catalogs for them.
func (r *ProviderRegistry) Apply(settings domain.Settings) ([]string, error) {
	configs := settings.EnabledProviders()

	r.mu.Lock()
	defer r.mu.Unlock()

	var changed []string
	seen := make(map[string]bool, len(configs))
	order := make([]string, 0, len(configs))

	for _, cfg := range configs {
		seen[cfg.Name] = true
		order = append(order, cfg.Name)

		if entry, ok := r.entries[cfg.Name]; ok && entry.fingerprint == cfg.Fingerprint() {
			continue
		}

		factory, ok := r.factories[cfg.Type]
		if !ok {
			return nil, fmt.Errorf("provider type %q: %w", cfg.Type, domain.ErrUnsupportedType)
		}

		provider := factory(cfg)
		ready := provider.Initialize(cfg)
		if !ready {
			logger.Warn("Provider %s failed to initialize", cfg.Name)
		}

		r.entries[cfg.Name] = &registryEntry{
			provider:    provider,
			fingerprint: cfg.Fingerprint(),
			ready:       ready,
		}
		changed = append(changed, cfg.Name)
	}

	for name := range r.entries {
		if !seen[name] {
			delete(r.entries, name)
			changed = append(changed, name)
		}
	}
	r.order = order

	return changed, nil
}

// Ready returns the providers that initialized successfully, in the
// order they appear in settings.
func (r *ProviderRegistry) Ready() []driven.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ready []driven.Provider
	for _, name := range r.order {
		if entry, ok := r.entries[name]; ok && entry.ready {
			ready = append(ready, entry.provider)
		}
	}
	return ready
}

// States reports each registered provider's readiness by name.
func (r *ProviderRegistry) States() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	states := make(map[string]bool, len(r.entries))
	for name, entry := range r.entries {
		states[name] = entry.ready
	}
	return states
}
