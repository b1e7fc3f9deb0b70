package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driving"
	"github.com/custodia-labs/quillsync-cli/internal/logger"
)

// SyncReconciler compares each local document against the newest remote
// backup across all providers and resolves the divergence: local newer
// or missing remotely pushes, remote newer pulls, timestamps within the
// tolerance are left alone.
type SyncReconciler struct {
	notes     driven.NoteStore
	builder   *ArtifactBuilder
	registry  *ProviderRegistry
	catalog   *RemoteCatalog
	orch      *BackupOrchestrator
	tolerance time.Duration
}

var _ driving.SyncReconciler = (*SyncReconciler)(nil)

// NewSyncReconciler creates a reconciler. A non-positive tolerance
// falls back to the default sync tolerance.
func NewSyncReconciler(
	notes driven.NoteStore,
	builder *ArtifactBuilder,
	registry *ProviderRegistry,
	catalog *RemoteCatalog,
	orch *BackupOrchestrator,
	tolerance time.Duration,
) *SyncReconciler {
	if tolerance <= 0 {
		tolerance = domain.DefaultSyncTolerance
	}
	return &SyncReconciler{
		notes:     notes,
		builder:   builder,
		registry:  registry,
		catalog:   catalog,
		orch:      orch,
		tolerance: tolerance,
	}
}

// ReconcileAll reconciles every document in the vault. Provider
// catalogs are fetched once per pass and invalidated when the pass
// completes, so the next pass observes fresh remote state.
func (r *SyncReconciler) ReconcileAll(ctx context.Context) (*domain.RunSummary, error) {
	if _, err := r.notes.Collection(); err != nil {
		return nil, err
	}
	providers := r.registry.Ready()
	if len(providers) == 0 {
		r.orch.notify(domain.NotifyWarning, "No storage providers are configured")
		return nil, domain.ErrNoProviders
	}
	defer r.catalog.InvalidateAll()

	providers = r.availableProviders(ctx, providers)
	if len(providers) == 0 {
		return nil, errors.New("listing backups failed on every provider")
	}

	docs, err := r.notes.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing vault documents: %w", err)
	}

	started := r.orch.clock.Now()
	logger.Info("Reconciling %d documents against %d providers", len(docs), len(providers))

	summary := &domain.RunSummary{}
	for _, doc := range docs {
		if err := r.reconcileOne(ctx, &doc, providers, summary); err != nil {
			logger.Warn("Reconciling %s failed: %v", doc.ID, err)
			summary.Failed++
		}
	}

	r.orch.recordRun(ctx, domain.RunSync, started, summary, nil)
	r.orch.notify(summaryLevel(summary),
		fmt.Sprintf("Sync complete: %d pushed, %d pulled, %d skipped", summary.Pushed, summary.Pulled, summary.Skipped))
	logger.Info("Reconciliation finished: %d pushed, %d pulled, %d failed", summary.Pushed, summary.Pulled, summary.Failed)

	return summary, nil
}

// ReconcileDocument reconciles a single document by ID.
func (r *SyncReconciler) ReconcileDocument(ctx context.Context, id string) error {
	providers := r.registry.Ready()
	if len(providers) == 0 {
		return domain.ErrNoProviders
	}
	defer r.catalog.InvalidateAll()

	providers = r.availableProviders(ctx, providers)
	if len(providers) == 0 {
		return errors.New("listing backups failed on every provider")
	}

	doc, err := r.notes.GetDocument(ctx, id)
	if err != nil {
		return fmt.Errorf("loading document %s: %w", id, err)
	}

	summary := &domain.RunSummary{}
	if err := r.reconcileOne(ctx, doc, providers, summary); err != nil {
		return err
	}

	switch {
	case summary.Pushed > 0:
		r.orch.notify(domain.NotifySuccess, fmt.Sprintf("Pushed %s to remote storage", id))
	case summary.Pulled > 0:
		r.orch.notify(domain.NotifySuccess, fmt.Sprintf("Pulled newer copy of %s from remote storage", id))
	default:
		r.orch.notify(domain.NotifyInfo, fmt.Sprintf("%s is already up to date", id))
	}
	return nil
}

// reconcileOne resolves one document against the newest matching backup
// across all providers.
func (r *SyncReconciler) reconcileOne(ctx context.Context, doc *domain.Document, providers []driven.Provider, summary *domain.RunSummary) error {
	if doc.Container || !doc.Kind.IsValid() {
		summary.Skipped++
		return nil
	}

	relativePath := RelativePathFor(doc)
	best, bestProvider, found, err := r.newestRemote(ctx, providers, relativePath)
	if err != nil {
		return err
	}

	decision := domain.DecideSync(doc.ModifiedAt, best.Timestamp, found, r.tolerance)
	logger.Debug("Decision for %s: %s", relativePath, decision)

	switch decision {
	case domain.DecisionSame:
		summary.Skipped++
		return nil

	case domain.DecisionLocalNewer, domain.DecisionRemoteMissing:
		return r.push(ctx, doc.ID, summary)

	case domain.DecisionRemoteNewer:
		return r.pull(ctx, doc.ID, best, bestProvider, summary)
	}
	return nil
}

// availableProviders primes the per-pass catalog for each provider and
// drops any whose listing fails. One destination's transient listing
// failure must not abort the pass for the healthy ones, and the failed
// List is not retried until the next pass.
func (r *SyncReconciler) availableProviders(ctx context.Context, providers []driven.Provider) []driven.Provider {
	usable := make([]driven.Provider, 0, len(providers))
	for _, provider := range providers {
		if _, err := r.catalog.GetOrFetch(ctx, provider); err != nil {
			logger.Warn("Listing backups on %s failed, skipping it this pass: %v", provider.Name(), err)
			continue
		}
		usable = append(usable, provider)
	}
	return usable
}

// newestRemote finds the most recent backup of relativePath across the
// providers whose catalogs were primed for this pass.
func (r *SyncReconciler) newestRemote(ctx context.Context, providers []driven.Provider, relativePath string) (domain.BackupMetadata, driven.Provider, bool, error) {
	var (
		best         domain.BackupMetadata
		bestProvider driven.Provider
		found        bool
	)
	for _, provider := range providers {
		listing, err := r.catalog.GetOrFetch(ctx, provider)
		if err != nil {
			return domain.BackupMetadata{}, nil, false, err
		}
		match, ok := domain.LatestMatch(listing, relativePath)
		if !ok {
			continue
		}
		if !found || match.Timestamp.After(best.Timestamp) {
			best = match
			bestProvider = provider
			found = true
		}
	}
	return best, bestProvider, found, nil
}

// push stores a fresh artifact of the document on all providers.
func (r *SyncReconciler) push(ctx context.Context, id string, summary *domain.RunSummary) error {
	artifact, err := r.builder.Build(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrFiltered) || errors.Is(err, domain.ErrNotFound) {
			summary.Skipped++
			return nil
		}
		return err
	}

	result := r.orch.Dispatch(ctx, artifact)
	if result.Outcome() == domain.OutcomeFailure {
		return fmt.Errorf("pushing %s: no provider accepted the artifact", id)
	}
	summary.Pushed++
	summary.Succeeded++
	return nil
}

// pull overwrites the local document with the newest remote copy.
func (r *SyncReconciler) pull(ctx context.Context, id string, meta domain.BackupMetadata, provider driven.Provider, summary *domain.RunSummary) error {
	key := domain.DeriveStorageKey("", meta)

	content, err := provider.Fetch(ctx, key)
	if err != nil {
		return fmt.Errorf("fetching %s from %s: %w", key, provider.Name(), err)
	}
	if err := r.notes.UpdateContent(ctx, id, content); err != nil {
		return fmt.Errorf("updating %s: %w", id, err)
	}

	summary.Pulled++
	summary.Succeeded++
	return nil
}
