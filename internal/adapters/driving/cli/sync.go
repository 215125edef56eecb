package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geosync-cli/internal/connectors/google"
	"github.com/custodia-labs/geosync-cli/internal/core/ports/driving"
	"github.com/custodia-labs/geosync-cli/internal/core/services"
)

// envFolderID overrides the configured source folder when set.
const envFolderID = "GOOGLE_DRIVE_FOLDER_ID"

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Extract provider sheets into the staging database",
	Long: `Scans the configured Google Drive folder for provider spreadsheets,
parses their restriction and currency tabs, and rebuilds the staging
database. Providers whose sheet content is unchanged since the last run
are skipped. The production database is never touched; run promote to
publish staged data.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	syncer, err := buildSyncer(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Println("Syncing providers to staging...")
	summary, err := syncer.Sync(cmd.Context())
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	for _, o := range summary.Outcomes {
		line := fmt.Sprintf("  %-30s %s", o.Name, o.Status)
		if o.Message != "" {
			line += " (" + o.Message + ")"
		}
		cmd.Println(line)
	}

	cmd.Println()
	cmd.Printf("Run %s: %d providers (%d new, %d updated, %d skipped, %d failed, %d pruned)\n",
		summary.RunID, summary.Providers, summary.New, summary.Updated,
		summary.Skipped, summary.Failed, summary.Pruned)
	cmd.Printf("Staging now holds %d restrictions, %d currencies, %d games\n",
		summary.RestrictionRows, summary.CurrencyRows, summary.GameRows)
	if summary.Warnings > 0 || summary.Collisions > 0 {
		cmd.Printf("Parse observations: %d warnings, %d tier collisions\n",
			summary.Warnings, summary.Collisions)
	}
	cmd.Println("Review with 'geosync preview', then publish with 'geosync promote'.")
	return nil
}

// buildSyncer assembles the Google connector and sync orchestrator from
// configuration. Built per run so credentials and folder changes take
// effect without restart.
func buildSyncer(ctx context.Context) (driving.Syncer, error) {
	folderID := os.Getenv(envFolderID)
	if folderID == "" {
		folderID = configStore.GetString("google.folder_id")
	}
	if folderID == "" {
		return nil, errors.New("no source folder configured: set google.folder_id or " + envFolderID)
	}

	keyFile := configStore.GetString("google.service_account_file")
	if keyFile == "" {
		return nil, errors.New("no credentials configured: set google.service_account_file")
	}

	ts, err := google.ServiceAccountTokenSource(ctx, keyFile)
	if err != nil {
		return nil, err
	}
	driveSvc, err := google.NewDriveService(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}
	sheetsSvc, err := google.NewSheetsService(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	limiter := google.NewRateLimiter(
		time.Duration(configStore.GetInt("google.api_delay_ms")) * time.Millisecond)
	source := google.NewSheetSource(
		google.NewDriveClient(driveSvc, limiter),
		google.NewSheetsClient(sheetsSvc, limiter),
		folderID,
		configStore.GetString("sync.precedence"),
	)

	return services.NewSyncOrchestrator(source, openStore, locker, paths, runTimeout()), nil
}
