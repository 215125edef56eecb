// Package cli implements the geosync command-line interface.
package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/geosync-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/geosync-cli/internal/adapters/driven/lockfile"
	"github.com/custodia-labs/geosync-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/geosync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/geosync-cli/internal/core/services"
	"github.com/custodia-labs/geosync-cli/internal/logger"
)

// version is set by Execute.
var version = "dev"

// Global flags.
var (
	flagVerbose bool
	flagDataDir string
	flagConfig  string
)

// Services wired by initServices. The backup catalogue and the services
// behind it are opened lazily via ensureBackups, so commands that never
// snapshot do not create the backups directory as a side effect.
var (
	configStore   *configfile.ConfigStore
	paths         driven.Paths
	locker        driven.Locker
	openStore     driven.StoreOpener
	diffService   *services.DiffService
	catalog       *sqlite.Catalog
	backupService *services.BackupService
	promoter      *services.PromotionEngine
)

var rootCmd = &cobra.Command{
	Use:   "geosync",
	Short: "Sync gaming provider restrictions from Google Sheets to SQLite",
	Long: `geosync extracts country restrictions, supported currencies and game
catalogues from provider spreadsheets in a Google Drive folder, stages
them in a local SQLite database, and promotes the staged data to the
production database once reviewed.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.geosync/data)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config directory (default ~/.geosync)")
}

// initServices wires the adapters and services shared by all commands.
// The Google connector is built per sync run instead; see runSync.
func initServices(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(flagVerbose)

	var err error
	configStore, err = configfile.NewConfigStore(flagConfig)
	if err != nil {
		return err
	}

	dataDir := flagDataDir
	if dataDir == "" {
		dataDir = configStore.GetString("data.dir")
	}
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dataDir = filepath.Join(home, ".geosync", "data")
	}

	paths = driven.Paths{DataDir: dataDir}
	locker = lockfile.New(dataDir)
	openStore = sqlite.Open

	diffService = services.NewDiffService(openStore, paths)

	return nil
}

// ensureBackups opens the backup catalogue and wires the services built
// on it. Callers pair it with a deferred closeBackups.
func ensureBackups() error {
	if backupService != nil {
		return nil
	}

	c, err := sqlite.OpenCatalog(paths.BackupsDir())
	if err != nil {
		return err
	}
	catalog = c
	backupService = services.NewBackupService(
		c, openStore, locker, paths, configStore.GetInt("backup.retention"))
	promoter = services.NewPromotionEngine(backupService, openStore, locker, paths)
	return nil
}

// closeBackups releases the catalogue opened by ensureBackups.
func closeBackups() {
	if catalog == nil {
		return
	}
	if err := catalog.Close(); err != nil {
		logger.Warn("closing backup catalogue: %v", err)
	}
	catalog = nil
	backupService = nil
	promoter = nil
}

// runTimeout returns the configured per-run sync bound.
func runTimeout() time.Duration {
	return time.Duration(configStore.GetInt("sync.run_timeout_min")) * time.Minute
}

// Execute runs the root command.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}
