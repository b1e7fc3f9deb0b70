// Package cli implements the quillsync command-line interface using cobra.
// Commands call driving ports; the composition root in cmd/quillsync wires
// concrete services before Execute runs.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driving"
	"github.com/custodia-labs/quillsync-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services the commands call. Set by SetServices; commands check for nil
// so a partially wired binary fails with a clear message.
var (
	backupOrchestrator driving.BackupOrchestrator
	syncReconciler     driving.SyncReconciler
	statusReporter     driving.StatusReporter
	settingsStore      driven.SettingsStore
	systemClock        driven.Clock
	newVaultWatcher    func(root string) (driven.VaultWatcher, error)
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "quillsync",
	Short: "Back up a markdown vault to multiple destinations",
	Long: `QuillSync watches a markdown vault and keeps copies of every journal,
page and asset on the storage destinations you configure: S3-compatible
object stores, WebDAV shares and plain directories.

Run 'quillsync backup' for a one-off backup, 'quillsync watch' to back up
continuously as you edit, and 'quillsync sync' to reconcile local files
against the newest remote copies.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

// Services holds everything the commands depend on.
type Services struct {
	Backup   driving.BackupOrchestrator
	Sync     driving.SyncReconciler
	Status   driving.StatusReporter
	Settings driven.SettingsStore
	Clock    driven.Clock

	// NewWatcher builds a vault watcher for watch mode. Optional;
	// watch fails with a message when unset.
	NewWatcher func(root string) (driven.VaultWatcher, error)
}

// SetServices injects the services the commands call.
func SetServices(s Services) {
	backupOrchestrator = s.Backup
	syncReconciler = s.Sync
	statusReporter = s.Status
	settingsStore = s.Settings
	systemClock = s.Clock
	newVaultWatcher = s.NewWatcher
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
