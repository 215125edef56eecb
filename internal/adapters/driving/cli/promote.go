package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geosync-cli/internal/core/domain"
)

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Publish the staging database to production",
	Long: `Backs production up, then atomically replaces it with the staging
database. Readers of the production file see either the old data or the
new data in full, never a partial copy.`,
	RunE: runPromote,
}

func init() {
	rootCmd.AddCommand(promoteCmd)
}

func runPromote(cmd *cobra.Command, _ []string) error {
	if err := ensureBackups(); err != nil {
		return err
	}
	defer closeBackups()

	result, err := promoter.Promote(cmd.Context())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoStaging):
			return errors.New("no staging database found: run 'geosync sync' first")
		case errors.Is(err, domain.ErrLockHeld):
			return errors.New("another promote or restore is running: " + err.Error())
		}
		return err
	}

	if result.Backup != nil {
		cmd.Printf("Backed up production to %s (%d bytes)\n",
			result.Backup.Filename, result.Backup.SizeBytes)
	} else {
		cmd.Println("No existing production database; created fresh.")
	}
	cmd.Printf("Promoted %d providers (%d restrictions, %d currencies) in %s\n",
		result.Providers, result.Restrictions, result.Currencies, result.Duration.Round(time.Millisecond))
	return nil
}
