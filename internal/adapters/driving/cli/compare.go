package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geosync-cli/internal/core/domain"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Diff staging against production",
	Long: `Compares staged providers against production by content fingerprint
and prints which providers a promote would add, change or remove.`,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, _ []string) error {
	if diffService == nil {
		return errors.New("diff service not configured")
	}

	diff, err := diffService.Compare(cmd.Context())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoStaging):
			return errors.New("no staging database found: run 'geosync sync' first")
		case errors.Is(err, domain.ErrNoProduction):
			return errors.New("no production database found: run 'geosync promote' once to create it")
		}
		return err
	}

	if diff.Empty() {
		cmd.Printf("Staging and production are identical (%d providers).\n", diff.Unchanged)
		return nil
	}

	for _, name := range diff.Added {
		cmd.Printf("  + %s\n", name)
	}
	for _, name := range diff.Changed {
		cmd.Printf("  ~ %s\n", name)
	}
	for _, name := range diff.Removed {
		cmd.Printf("  - %s\n", name)
	}
	cmd.Printf("\n%d added, %d changed, %d removed, %d unchanged\n",
		len(diff.Added), len(diff.Changed), len(diff.Removed), diff.Unchanged)
	return nil
}
