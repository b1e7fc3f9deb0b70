package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup [document-id]",
	Short: "Back up the vault to all enabled destinations",
	Long: `Builds backup artifacts and dispatches them to every enabled provider.
If a document ID is provided, only that document is backed up.
Otherwise, the whole vault is backed up.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBackup,
}

func init() {
	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	if backupOrchestrator == nil {
		return errors.New("backup service not configured")
	}

	ctx := context.Background()

	if len(args) > 0 {
		id := args[0]
		cmd.Printf("Backing up document: %s...\n", id)

		if err := backupOrchestrator.DocumentBackup(ctx, id); err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}

		cmd.Printf("Document %s backed up.\n", id)
		return nil
	}

	cmd.Println("Backing up vault...")

	summary, err := backupOrchestrator.FullBackup(ctx)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	cmd.Printf("Backup complete: %s.\n", summary)
	return nil
}
