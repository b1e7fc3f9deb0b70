package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driving"
	"github.com/custodia-labs/quillsync-cli/internal/logger"
)

// historyKeep caps the number of run records retained for status.
const historyKeep = 100

// BackupOrchestrator coordinates backup runs: it builds artifacts,
// dispatches them to every ready provider in parallel, and records the
// run outcome.
type BackupOrchestrator struct {
	notes    driven.NoteStore
	builder  *ArtifactBuilder
	registry *ProviderRegistry
	catalog  *RemoteCatalog
	history  driven.RunHistoryStore
	notifier driven.Notifier
	clock    driven.Clock
}

// Compile-time interface checks.
var (
	_ driving.BackupOrchestrator = (*BackupOrchestrator)(nil)
	_ driving.StatusReporter     = (*BackupOrchestrator)(nil)
)

// NewBackupOrchestrator creates an orchestrator. history and notifier
// may be nil; run recording and notifications are then skipped.
func NewBackupOrchestrator(
	notes driven.NoteStore,
	builder *ArtifactBuilder,
	registry *ProviderRegistry,
	catalog *RemoteCatalog,
	history driven.RunHistoryStore,
	notifier driven.Notifier,
	clock driven.Clock,
) *BackupOrchestrator {
	return &BackupOrchestrator{
		notes:    notes,
		builder:  builder,
		registry: registry,
		catalog:  catalog,
		history:  history,
		notifier: notifier,
		clock:    clock,
	}
}

// Dispatch stores one artifact on every ready provider in parallel and
// waits for all of them to settle. One provider's failure never cancels
// the others; the result reflects all attempts.
func (o *BackupOrchestrator) Dispatch(ctx context.Context, artifact *domain.BackupArtifact) domain.DispatchResult {
	providers := o.registry.Ready()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for _, provider := range providers {
		wg.Add(1)
		go func(p driven.Provider) {
			defer wg.Done()
			if err := p.Store(ctx, artifact); err != nil {
				logger.Warn("Storing %s on %s failed: %v", artifact.Metadata.RelativePath, p.Name(), err)
				return
			}
			mu.Lock()
			successes++
			mu.Unlock()
		}(provider)
	}
	wg.Wait()

	return domain.DispatchResult{SuccessCount: successes, TotalCount: len(providers)}
}

// FullBackup backs up every document in the vault and reports a single
// aggregated summary.
func (o *BackupOrchestrator) FullBackup(ctx context.Context) (*domain.RunSummary, error) {
	if _, err := o.notes.Collection(); err != nil {
		return nil, err
	}
	if len(o.registry.Ready()) == 0 {
		o.notify(domain.NotifyWarning, "No storage providers are configured")
		return nil, domain.ErrNoProviders
	}

	docs, err := o.notes.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing vault documents: %w", err)
	}

	started := o.clock.Now()
	logger.Info("Starting full backup of %d documents", len(docs))

	summary := &domain.RunSummary{}
	dispatched := make(map[string]bool)
	for _, doc := range docs {
		o.backupOne(ctx, doc.ID, dispatched, summary)
	}

	o.recordRun(ctx, domain.RunBackup, started, summary, nil)
	o.notify(summaryLevel(summary), "Backup complete: "+summary.String())
	logger.Info("Full backup finished: %s", summary)

	return summary, nil
}

// DocumentBackup backs up a single document and notifies its outcome.
func (o *BackupOrchestrator) DocumentBackup(ctx context.Context, id string) error {
	if len(o.registry.Ready()) == 0 {
		return domain.ErrNoProviders
	}

	artifact, err := o.builder.Build(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrFiltered) {
			return err
		}
		o.notify(domain.NotifyError, fmt.Sprintf("Backup of %s failed: %v", id, err))
		return err
	}

	result := o.Dispatch(ctx, artifact)
	switch result.Outcome() {
	case domain.OutcomeSuccess:
		o.notify(domain.NotifySuccess, fmt.Sprintf("Backed up %s to %s providers", artifact.Metadata.RelativePath, result))
	case domain.OutcomePartial:
		o.notify(domain.NotifyWarning, fmt.Sprintf("Backed up %s to %s providers", artifact.Metadata.RelativePath, result))
	default:
		o.notify(domain.NotifyError, fmt.Sprintf("Backup of %s failed on all providers", artifact.Metadata.RelativePath))
		return fmt.Errorf("storing %s: no provider accepted the artifact", id)
	}
	return nil
}

// ProcessChanges backs up the documents affected by one coalesced
// batch. Per-document noise is suppressed; the batch reports a single
// summary notification.
func (o *BackupOrchestrator) ProcessChanges(ctx context.Context, events []domain.ChangeEvent) error {
	ids := domain.AffectedDocuments(events)
	if len(ids) == 0 {
		return nil
	}
	if len(o.registry.Ready()) == 0 {
		o.notify(domain.NotifyWarning, "No storage providers are configured")
		return domain.ErrNoProviders
	}

	started := o.clock.Now()
	logger.Info("Processing %d changed documents from %d events", len(ids), len(events))

	summary := &domain.RunSummary{}
	dispatched := make(map[string]bool)
	for _, id := range ids {
		o.backupOne(ctx, id, dispatched, summary)
	}

	o.recordRun(ctx, domain.RunBackup, started, summary, nil)
	o.notify(summaryLevel(summary), "Backup complete: "+summary.String())

	return nil
}

// ApplySettings reconfigures providers and invalidates cached catalogs
// for every destination that changed.
func (o *BackupOrchestrator) ApplySettings(ctx context.Context, settings domain.Settings) error {
	changed, err := o.registry.Apply(settings)
	if err != nil {
		return err
	}
	for _, name := range changed {
		o.catalog.Invalidate(name)
	}
	if len(changed) > 0 {
		logger.Info("Reconfigured %d storage providers", len(changed))
	}
	return nil
}

// RecentRuns returns the most recent run records, newest first.
func (o *BackupOrchestrator) RecentRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if o.history == nil {
		return nil, nil
	}
	return o.history.Recent(ctx, limit)
}

// ProviderStates reports each configured provider's readiness.
func (o *BackupOrchestrator) ProviderStates() map[string]bool {
	return o.registry.States()
}

// backupOne builds and dispatches a single document, folding the
// outcome into the running summary. dispatched dedupes artifacts by
// relative path within one run: several documents can reference the
// same asset, and the asset only needs to be stored once.
func (o *BackupOrchestrator) backupOne(ctx context.Context, id string, dispatched map[string]bool, summary *domain.RunSummary) {
	artifact, err := o.builder.Build(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrFiltered), errors.Is(err, domain.ErrUnsupportedType), errors.Is(err, domain.ErrNotFound):
			summary.Skipped++
		default:
			logger.Warn("Building artifact for %s failed: %v", id, err)
			summary.Failed++
		}
		return
	}

	if dispatched[artifact.Metadata.RelativePath] {
		summary.Skipped++
		return
	}
	dispatched[artifact.Metadata.RelativePath] = true

	result := o.Dispatch(ctx, artifact)
	if result.Outcome() == domain.OutcomeFailure {
		summary.Failed++
		return
	}
	summary.Succeeded++
}

// recordRun persists a run record and prunes old history.
func (o *BackupOrchestrator) recordRun(ctx context.Context, kind domain.RunKind, started time.Time, summary *domain.RunSummary, runErr error) {
	if o.history == nil {
		return
	}

	record := domain.RunRecord{
		ID:        uuid.NewString(),
		Kind:      kind,
		StartedAt: started,
		EndedAt:   o.clock.Now(),
		Succeeded: summary.Succeeded,
		Failed:    summary.Failed,
		Skipped:   summary.Skipped,
	}
	if runErr != nil {
		record.Error = runErr.Error()
	}

	if err := o.history.Record(ctx, record); err != nil {
		logger.Warn("Recording run history failed: %v", err)
		return
	}
	if err := o.history.Prune(ctx, historyKeep); err != nil {
		logger.Warn("Pruning run history failed: %v", err)
	}
}

// notify emits a user-facing message when a notifier is configured.
func (o *BackupOrchestrator) notify(level domain.NotifyLevel, message string) {
	if o.notifier != nil {
		o.notifier.Notify(level, message)
	}
}

// summaryLevel grades a run summary for notification.
func summaryLevel(s *domain.RunSummary) domain.NotifyLevel {
	switch {
	case s.Failed == 0 && s.Succeeded > 0:
		return domain.NotifySuccess
	case s.Failed > 0 && s.Succeeded > 0:
		return domain.NotifyWarning
	case s.Failed > 0:
		return domain.NotifyError
	default:
		return domain.NotifyInfo
	}
}
