package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show provider readiness and recent runs",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().IntVarP(&statusLimit, "limit", "n", 10, "maximum number of runs to show")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if statusReporter == nil {
		return errors.New("status service not configured")
	}

	states := statusReporter.ProviderStates()
	cmd.Println("Providers")
	cmd.Println("---------")
	if len(states) == 0 {
		cmd.Println("  (none configured)")
	} else {
		names := make([]string, 0, len(states))
		for name := range states {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			state := "ready"
			if !states[name] {
				state = "unavailable"
			}
			cmd.Printf("  %-20s %s\n", name, state)
		}
	}
	cmd.Println()

	runs, err := statusReporter.RecentRuns(context.Background(), statusLimit)
	if err != nil {
		return fmt.Errorf("loading run history: %w", err)
	}

	cmd.Println("Recent runs")
	cmd.Println("-----------")
	if len(runs) == 0 {
		cmd.Println("  (no runs recorded)")
		return nil
	}

	for _, run := range runs {
		line := fmt.Sprintf("  %s  %-6s  %d succeeded, %d failed, %d skipped",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Kind, run.Succeeded, run.Failed, run.Skipped)
		if run.Error != "" {
			line += "  (" + run.Error + ")"
		}
		cmd.Println(line)
	}

	return nil
}
