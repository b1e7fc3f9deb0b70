// Command quillsync backs up a markdown vault to multiple storage
// destinations and keeps local and remote copies reconciled.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/custodia-labs/quillsync-cli/internal/adapters/driven/clock"
	"github.com/custodia-labs/quillsync-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/quillsync-cli/internal/adapters/driven/notify"
	"github.com/custodia-labs/quillsync-cli/internal/adapters/driven/providers"
	"github.com/custodia-labs/quillsync-cli/internal/adapters/driven/providers/filesystem"
	"github.com/custodia-labs/quillsync-cli/internal/adapters/driven/providers/s3"
	"github.com/custodia-labs/quillsync-cli/internal/adapters/driven/providers/webdav"
	"github.com/custodia-labs/quillsync-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/quillsync-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/quillsync-cli/internal/adapters/driven/vault"
	"github.com/custodia-labs/quillsync-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quillsync-cli/internal/core/services"
	"github.com/custodia-labs/quillsync-cli/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	settingsStore, err := file.NewSettingsStore("")
	if err != nil {
		return fmt.Errorf("opening settings: %w", err)
	}

	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	clk := clock.NewSystem()
	notes := vault.NewStore(afero.NewOsFs(), settings.VaultPath).WithCollection(settings.Collection)
	builder := services.NewArtifactBuilder(notes, clk)
	catalog := services.NewRemoteCatalog()

	registry := services.NewProviderRegistry(map[domain.ProviderType]driven.ProviderFactory{
		domain.ProviderObjectStore: func(cfg domain.ProviderConfig) driven.Provider {
			return providers.WithRateLimit(s3.New(cfg))
		},
		domain.ProviderWebDAV: func(cfg domain.ProviderConfig) driven.Provider {
			return providers.WithRateLimit(webdav.New(cfg))
		},
		domain.ProviderFilesystem: func(cfg domain.ProviderConfig) driven.Provider {
			return filesystem.New(cfg)
		},
	})

	// Run history is best-effort; the status command just shows less
	// without it.
	var history driven.RunHistoryStore
	sqliteStore, err := sqlite.NewStore("")
	if err != nil {
		logger.Warn("Opening run history database failed, history will not persist: %v", err)
		history = memory.NewRunHistoryStore()
	} else {
		defer sqliteStore.Close() //nolint:errcheck // Best-effort close on exit
		history = sqliteStore
	}

	orchestrator := services.NewBackupOrchestrator(
		notes, builder, registry, catalog, history, notify.NewConsole(), clk)
	reconciler := services.NewSyncReconciler(
		notes, builder, registry, catalog, orchestrator, settings.SyncTolerance)

	if err := orchestrator.ApplySettings(context.Background(), settings); err != nil {
		logger.Warn("Applying provider settings failed: %v", err)
	}

	cli.SetServices(cli.Services{
		Backup:   orchestrator,
		Sync:     reconciler,
		Status:   orchestrator,
		Settings: settingsStore,
		Clock:    clk,
		NewWatcher: func(root string) (driven.VaultWatcher, error) {
			return vault.NewWatcher(root)
		},
	})

	return cli.Execute()
}
