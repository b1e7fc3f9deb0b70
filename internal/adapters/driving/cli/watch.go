package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
	"github.com/custodia-labs/quillsync-cli/internal/core/services"
	"github.com/custodia-labs/quillsync-cli/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the vault and back up changed documents",
	Long: `Watches the vault for file changes and backs up affected documents
once editing pauses. Rapid consecutive edits are coalesced into a single
backup pass per document. Press Ctrl+C to stop; a pending batch is
flushed before exit.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if backupOrchestrator == nil || settingsStore == nil || systemClock == nil {
		return errors.New("backup service not configured")
	}
	if newVaultWatcher == nil {
		return errors.New("vault watching not available")
	}

	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if settings.VaultPath == "" {
		return fmt.Errorf("no vault path configured; run 'quillsync settings vault <path>' first")
	}

	watcher, err := newVaultWatcher(settings.VaultPath)
	if err != nil {
		return fmt.Errorf("watching %s: %w", settings.VaultPath, err)
	}
	defer watcher.Close() //nolint:errcheck // Best-effort release on exit

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, err := watcher.Start(ctx)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}

	coalescer := services.NewChangeCoalescer(settings.QuiescenceWindow, systemClock,
		func(batch []domain.ChangeEvent) {
			if err := backupOrchestrator.ProcessChanges(context.Background(), batch); err != nil {
				logger.Warn("Processing change batch failed: %v", err)
			}
		})

	cmd.Printf("Watching %s (quiescence window %s). Press Ctrl+C to stop.\n",
		settings.VaultPath, settings.QuiescenceWindow)

	for event := range events {
		logger.Debug("Change detected: %s %s", event.Op, event.Path)
		if err := coalescer.OnChange(event); err != nil {
			// Only possible once the coalescer has been closed; stop
			// consuming rather than silently dropping edits.
			logger.Warn("Dropping change for %s: %v", event.Path, err)
			break
		}
	}

	// The event channel closed: either the context was cancelled or the
	// watcher failed. Flush whatever is still buffered before exiting.
	cmd.Println("\nStopping; flushing pending changes...")
	if err := coalescer.Close(); err != nil {
		return fmt.Errorf("flushing pending changes: %w", err)
	}

	cmd.Println("Stopped.")
	return nil
}
