package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driving"
)

// swapServices installs test doubles and restores the originals afterwards.
func swapServices(t *testing.T, s Services) {
	t.Helper()

	restore := Services{
		Backup:     backupOrchestrator,
		Sync:       syncReconciler,
		Status:     statusReporter,
		Settings:   settingsStore,
		Clock:      systemClock,
		NewWatcher: newVaultWatcher,
	}
	SetServices(s)
	t.Cleanup(func() { SetServices(restore) })
}

// execute runs the root command with args and captures output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return buf.String(), err
}

// mockBackup is a test double for driving.BackupOrchestrator.
type mockBackup struct {
	summary     *domain.RunSummary
	err         error
	backedUpIDs []string
	fullCalls   int
}

var _ driving.BackupOrchestrator = (*mockBackup)(nil)

func (m *mockBackup) FullBackup(context.Context) (*domain.RunSummary, error) {
	m.fullCalls++
	return m.summary, m.err
}

func (m *mockBackup) DocumentBackup(_ context.Context, id string) error {
	m.backedUpIDs = append(m.backedUpIDs, id)
	return m.err
}

func (m *mockBackup) ProcessChanges(context.Context, []domain.ChangeEvent) error {
	return m.err
}

func (m *mockBackup) ApplySettings(context.Context, domain.Settings) error {
	return m.err
}

// mockSync is a test double for driving.SyncReconciler.
type mockSync struct {
	summary       *domain.RunSummary
	err           error
	reconciledIDs []string
	allCalls      int
}

var _ driving.SyncReconciler = (*mockSync)(nil)

func (m *mockSync) ReconcileAll(context.Context) (*domain.RunSummary, error) {
	m.allCalls++
	return m.summary, m.err
}

func (m *mockSync) ReconcileDocument(_ context.Context, id string) error {
	m.reconciledIDs = append(m.reconciledIDs, id)
	return m.err
}

// mockStatus is a test double for driving.StatusReporter.
type mockStatus struct {
	runs   []domain.RunRecord
	states map[string]bool
	err    error
}

var _ driving.StatusReporter = (*mockStatus)(nil)

func (m *mockStatus) RecentRuns(context.Context, int) ([]domain.RunRecord, error) {
	return m.runs, m.err
}

func (m *mockStatus) ProviderStates() map[string]bool {
	return m.states
}
