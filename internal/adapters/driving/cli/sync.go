package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync [document-id]",
	Short: "Reconcile local documents against remote backups",
	Long: `Compares each local document against the newest remote copy across
all enabled providers. Newer local files are pushed; newer remote copies
are pulled. Timestamps within the configured tolerance count as equal.
If a document ID is provided, only that document is reconciled.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncReconciler == nil {
		return errors.New("sync service not configured")
	}

	ctx := context.Background()

	if len(args) > 0 {
		id := args[0]
		cmd.Printf("Reconciling document: %s...\n", id)

		if err := syncReconciler.ReconcileDocument(ctx, id); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		cmd.Printf("Document %s reconciled.\n", id)
		return nil
	}

	cmd.Println("Reconciling vault...")

	summary, err := syncReconciler.ReconcileAll(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	cmd.Printf("Sync complete: %d pushed, %d pulled, %d skipped, %d failed.\n",
		summary.Pushed, summary.Pulled, summary.Skipped, summary.Failed)
	return nil
}
