package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geosync-cli/internal/core/domain"
)

var restoreCmd = &cobra.Command{
	Use:   "restore [backup-id]",
	Short: "Restore production from a backup",
	Long: `Replaces the production database with a catalogued snapshot; the
most recent one when no ID is given. The argument may be a backup ID or
a snapshot filename. The current production state is snapshotted first,
so a restore can itself be undone.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRestore,
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	if err := ensureBackups(); err != nil {
		return err
	}
	defer closeBackups()

	id := ""
	if len(args) > 0 {
		id = args[0]
	}

	rec, err := backupService.Restore(cmd.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoBackups):
			return errors.New("no backups available to restore from")
		case errors.Is(err, domain.ErrLockHeld):
			return errors.New("another promote or restore is running: " + err.Error())
		}
		return err
	}

	cmd.Printf("Restored production from %s (created %s)\n",
		rec.Filename, rec.Timestamp.Format("2006-01-02 15:04:05"))
	return nil
}
