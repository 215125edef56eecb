package cli

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List production backups",
	Long:  `Prints catalogued production snapshots, newest first.`,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if err := ensureBackups(); err != nil {
		return err
	}
	defer closeBackups()

	records, err := backupService.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(records) == 0 {
		cmd.Println("No backups yet. Backups are taken automatically on promote.")
		return nil
	}

	cmd.Printf("%-36s  %-19s  %-40s %10s\n", "ID", "CREATED", "FILE", "SIZE")
	for _, rec := range records {
		cmd.Printf("%-36s  %-19s  %-40s %10d\n",
			rec.ID, rec.Timestamp.Format("2006-01-02 15:04:05"), rec.Filename, rec.SizeBytes)
	}
	return nil
}
