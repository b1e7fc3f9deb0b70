package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the vault path, timing windows and storage
destinations. Providers are edited in the settings file directly; run
'quillsync settings show' to find it.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsVaultCmd = &cobra.Command{
	Use:   "vault <path>",
	Short: "Set the vault path",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsVault,
}

var settingsWindowCmd = &cobra.Command{
	Use:   "window <duration>",
	Short: "Set the quiescence window for watch mode",
	Long: `Set how long the vault must stay quiet after an edit before the
pending batch is backed up, e.g. '15s' or '1m'.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsWindow,
}

var settingsToleranceCmd = &cobra.Command{
	Use:   "tolerance <duration>",
	Short: "Set the sync timestamp tolerance",
	Long: `Set how far apart local and remote timestamps may be while still
counting as equal during sync, e.g. '5s'.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsTolerance,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsVaultCmd)
	settingsCmd.AddCommand(settingsWindowCmd)
	settingsCmd.AddCommand(settingsToleranceCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsStore == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("File: %s\n", settingsStore.Path())
	cmd.Println()

	cmd.Println("[Vault]")
	if settings.VaultPath != "" {
		cmd.Printf("  Path: %s\n", settings.VaultPath)
	} else {
		cmd.Printf("  Path: (not set)\n")
	}
	if settings.Collection != "" {
		cmd.Printf("  Collection: %s\n", settings.Collection)
	}
	cmd.Println()

	cmd.Println("[Timing]")
	cmd.Printf("  Quiescence window: %s\n", settings.QuiescenceWindow)
	cmd.Printf("  Sync tolerance: %s\n", settings.SyncTolerance)
	cmd.Println()

	cmd.Println("[Providers]")
	if len(settings.Providers) == 0 {
		cmd.Println("  (none configured)")
		return nil
	}
	for _, p := range settings.Providers {
		state := "enabled"
		if !p.Enabled {
			state = "disabled"
		}
		cmd.Printf("  %s (%s, %s)\n", p.Name, p.Type, state)
		switch p.Type {
		case domain.ProviderObjectStore:
			cmd.Printf("    Bucket: %s\n", p.Bucket)
			if p.Endpoint != "" {
				cmd.Printf("    Endpoint: %s\n", p.Endpoint)
			}
			if p.AccessKey != "" {
				cmd.Printf("    Access key: %s\n", maskSecret(p.AccessKey))
			}
		case domain.ProviderWebDAV:
			cmd.Printf("    URL: %s\n", p.URL)
			cmd.Printf("    Username: %s\n", p.Username)
		case domain.ProviderFilesystem:
			cmd.Printf("    Root: %s\n", p.RootPath)
		}
		if p.Prefix != "" {
			cmd.Printf("    Prefix: %s\n", p.Prefix)
		}
		if err := p.Validate(); err != nil {
			cmd.Printf("    Warning: %v\n", err)
		}
	}

	return nil
}

func runSettingsVault(cmd *cobra.Command, args []string) error {
	if settingsStore == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	settings.VaultPath = args[0]
	if err := settingsStore.Save(settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	cmd.Printf("Vault path set to: %s\n", args[0])
	return nil
}

func runSettingsWindow(cmd *cobra.Command, args []string) error {
	return setDuration(cmd, args[0], "Quiescence window", func(s *domain.Settings, d time.Duration) {
		s.QuiescenceWindow = d
	})
}

func runSettingsTolerance(cmd *cobra.Command, args []string) error {
	return setDuration(cmd, args[0], "Sync tolerance", func(s *domain.Settings, d time.Duration) {
		s.SyncTolerance = d
	})
}

// setDuration parses, applies and persists a duration setting.
func setDuration(cmd *cobra.Command, raw, label string, apply func(*domain.Settings, time.Duration)) error {
	if settingsStore == nil {
		return errors.New("settings service not configured")
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fmt.Errorf("invalid duration %q: %w", raw, domain.ErrInvalidInput)
	}

	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	apply(&settings, d)
	if err := settingsStore.Save(settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	cmd.Printf("%s set to: %s\n", label, d)
	return nil
}

func maskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
