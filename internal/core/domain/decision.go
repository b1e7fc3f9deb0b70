package domain

import "time"

// SyncDecision is the per (document, provider) verdict of comparing local
// modification time against the most recent matching remote backup.
type SyncDecision string

// Available sync decisions.
const (
	// DecisionLocalNewer means the local copy wins: push.
	DecisionLocalNewer SyncDecision = "local_newer"

	// DecisionRemoteNewer means the remote copy wins: pull.
	DecisionRemoteNewer SyncDecision = "remote_newer"

	// DecisionSame means the timestamps fall within tolerance: no-op.
	DecisionSame SyncDecision = "same"

	// DecisionRemoteMissing means the provider holds no matching backup: push.
	DecisionRemoteMissing SyncDecision = "remote_missing"
)

// DefaultSyncTolerance treats near-simultaneous timestamps as equal,
// absorbing clock skew between the local machine and remote stores.
const DefaultSyncTolerance = 5 * time.Second

// DecideSync compares a local modification time against a remote backup
// timestamp with the given tolerance.
//
// A zero local or remote timestamp means the comparison input was
// malformed; the decision is then LocalNewer. Overwriting remote with
// local is the conservative choice against silent data loss, at the
// documented risk of clobbering a legitimately newer remote copy under
// clock skew.
func DecideSync(localModified, remote time.Time, hasRemote bool, tolerance time.Duration) SyncDecision {
	if !hasRemote {
		return DecisionRemoteMissing
	}
	if localModified.IsZero() || remote.IsZero() {
		return DecisionLocalNewer
	}
	if tolerance <= 0 {
		tolerance = DefaultSyncTolerance
	}

	diff := localModified.Sub(remote)
	if diff < 0 {
		diff = -diff
	}
	if diff < tolerance {
		return DecisionSame
	}
	if localModified.After(remote) {
		return DecisionLocalNewer
	}
	return DecisionRemoteNewer
}
