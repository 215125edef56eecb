package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geosync-cli/internal/core/domain"
)

var previewLogLimit int

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show what the staging database holds",
	Long: `Prints every staged provider with its restriction, currency and game
counts. Use --log to also print the most recent audit entries.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().IntVar(&previewLogLimit, "log", 0, "also show the N most recent audit entries")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, _ []string) error {
	if diffService == nil {
		return errors.New("diff service not configured")
	}

	summaries, err := diffService.Preview(cmd.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoStaging) {
			return errors.New("no staging database found: run 'geosync sync' first")
		}
		return err
	}

	if len(summaries) == 0 {
		cmd.Println("Staging database is empty.")
		return nil
	}

	cmd.Printf("%-30s %8s %12s %10s %6s %7s %6s\n",
		"PROVIDER", "BLOCKED", "CONDITIONAL", "REGULATED", "FIAT", "CRYPTO", "GAMES")
	for _, s := range summaries {
		fiat := fmt.Sprintf("%d", s.Fiat)
		if s.CurrencyMode == domain.ModeAllFiat {
			fiat = "ALL (*)"
		}
		cmd.Printf("%-30s %8d %12d %10d %6s %7d %6d\n",
			s.Name, s.Blocked, s.Conditional, s.Regulated, fiat, s.Crypto, s.Games)
	}
	cmd.Printf("\n%d providers staged\n", len(summaries))

	if previewLogLimit > 0 {
		if err := printSyncLog(cmd, previewLogLimit); err != nil {
			return err
		}
	}
	return nil
}

// printSyncLog prints the most recent staging audit entries.
func printSyncLog(cmd *cobra.Command, limit int) error {
	store, err := openStore(paths.Staging())
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.SyncLog(cmd.Context(), limit)
	if err != nil {
		return err
	}

	cmd.Println("\nRecent audit entries:")
	for _, e := range entries {
		cmd.Printf("  %s  %-30s %-7s %s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"), e.ProviderName, e.Outcome, e.Message)
	}
	return nil
}
