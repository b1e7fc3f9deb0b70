package providers

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driven"
)

// RateLimitConfig holds rate limiting configuration for a destination.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultRateLimits provides conservative defaults per provider type.
// Remote destinations are throttled well below typical service limits;
// the local filesystem needs no throttling at all.
var DefaultRateLimits = map[domain.ProviderType]RateLimitConfig{
	domain.ProviderObjectStore: {RequestsPerSecond: 20.0, BurstSize: 40},
	domain.ProviderWebDAV:      {RequestsPerSecond: 5.0, BurstSize: 10},
}

// RateLimited wraps a provider with a token-bucket limiter so a full
// backup of a large vault cannot hammer the destination.
type RateLimited struct {
	inner   driven.Provider
	limiter *rate.Limiter
}

var _ driven.Provider = (*RateLimited)(nil)

// WithRateLimit wraps a provider using the default limits for its
// type. Providers without a default pass through unwrapped.
func WithRateLimit(p driven.Provider) driven.Provider {
	cfg, ok := DefaultRateLimits[p.Type()]
	if !ok {
		return p
	}
	return &RateLimited{
		inner:   p,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// Name returns the wrapped provider's name.
func (r *RateLimited) Name() string { return r.inner.Name() }

// Type returns the wrapped provider's type.
func (r *RateLimited) Type() domain.ProviderType { return r.inner.Type() }

// Initialize prepares the wrapped provider.
func (r *RateLimited) Initialize(cfg domain.ProviderConfig) bool {
	return r.inner.Initialize(cfg)
}

// Store throttles then delegates.
func (r *RateLimited) Store(ctx context.Context, artifact *domain.BackupArtifact) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	return r.inner.Store(ctx, artifact)
}

// List throttles then delegates.
func (r *RateLimited) List(ctx context.Context) ([]domain.BackupMetadata, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.List(ctx)
}

// Fetch throttles then delegates.
func (r *RateLimited) Fetch(ctx context.Context, key string) ([]byte, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Fetch(ctx, key)
}

// Erase throttles then delegates.
func (r *RateLimited) Erase(ctx context.Context, key string) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	return r.inner.Erase(ctx, key)
}

// LastModified throttles then delegates.
func (r *RateLimited) LastModified(ctx context.Context, key string) (time.Time, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return time.Time{}, err
	}
	return r.inner.LastModified(ctx, key)
}
