package domain

import (
	"fmt"
	"time"
)

// DispatchOutcome classifies a multi-provider dispatch.
type DispatchOutcome string

// Available dispatch outcomes.
const (
	// OutcomeSuccess means every enabled provider accepted the artifact.
	OutcomeSuccess DispatchOutcome = "success"

	// OutcomePartial means some but not all providers accepted it.
	OutcomePartial DispatchOutcome = "partial"

	// OutcomeFailure means no provider accepted it.
	OutcomeFailure DispatchOutcome = "failure"
)

// DispatchResult aggregates the per-provider results of storing one
// artifact. A single provider's failure never cancels its siblings; the
// result is computed after all providers settle.
type DispatchResult struct {
	// SuccessCount is how many providers accepted the artifact.
	SuccessCount int

	// TotalCount is how many providers were dispatched to.
	TotalCount int
}

// Outcome returns the three-way classification of the dispatch.
func (r DispatchResult) Outcome() DispatchOutcome {
	switch {
	case r.TotalCount > 0 && r.SuccessCount == r.TotalCount:
		return OutcomeSuccess
	case r.SuccessCount > 0:
		return OutcomePartial
	default:
		return OutcomeFailure
	}
}

// String returns a compact "n/m" rendering for logs.
func (r DispatchResult) String() string {
	return fmt.Sprintf("%d/%d", r.SuccessCount, r.TotalCount)
}

// RunKind identifies what a recorded run did.
type RunKind string

// Available run kinds.
const (
	// RunBackup is a full or coalesced backup pass.
	RunBackup RunKind = "backup"

	// RunSync is a reconciliation pass.
	RunSync RunKind = "sync"
)

// RunSummary accumulates per-document outcomes over one full pass.
type RunSummary struct {
	// Succeeded counts documents stored by at least one provider
	// (at-least-once delivery model).
	Succeeded int

	// Failed counts documents no provider accepted.
	Failed int

	// Skipped counts documents filtered out or missing at processing time.
	Skipped int

	// Pushed and Pulled count reconciliation actions; zero for plain
	// backup runs.
	Pushed int
	Pulled int
}

// String renders the user-facing summary line.
func (s RunSummary) String() string {
	return fmt.Sprintf("%d succeeded, %d failed, %d skipped", s.Succeeded, s.Failed, s.Skipped)
}

// RunRecord is one completed backup or sync run, kept for the status
// command.
type RunRecord struct {
	// ID is a unique identifier for the run.
	ID string

	// Kind distinguishes backup runs from sync runs.
	Kind RunKind

	// StartedAt is when the run began.
	StartedAt time.Time

	// EndedAt is when the run finished.
	EndedAt time.Time

	// Succeeded, Failed and Skipped mirror the run's summary counts.
	Succeeded int
	Failed    int
	Skipped   int

	// Error holds the run-level error message, if any.
	Error string
}

// NotifyLevel grades user-visible notifications.
type NotifyLevel string

// Available notification levels.
const (
	NotifyInfo    NotifyLevel = "info"
	NotifySuccess NotifyLevel = "success"
	NotifyWarning NotifyLevel = "warning"
	NotifyError   NotifyLevel = "error"
)
