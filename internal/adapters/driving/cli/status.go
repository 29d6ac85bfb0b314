package cli

import (
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tracked sync state",
	Long:  `Prints the start of the last completed run and tracked products by status and channel.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	settings, log, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if err := settings.ValidateDatabase(); err != nil {
		return err
	}

	ctx := cmd.Context()
	reporter, closeFn, err := newStatusReporter(ctx, settings, log)
	if err != nil {
		return err
	}
	defer closeFn()

	mark, err := reporter.LastRun(ctx)
	if err != nil {
		return err
	}
	if mark == nil {
		cmd.Println("Last run: never")
	} else {
		cmd.Printf("Last run: %s\n", mark.LastSync.Format(time.RFC3339))
	}

	counts, err := reporter.Counts(ctx)
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		cmd.Println("No products tracked yet.")
		return nil
	}

	cmd.Printf("%-10s %-8s %8s\n", "STATUS", "CHANNEL", "COUNT")
	total := 0
	for _, c := range counts {
		cmd.Printf("%-10s %-8s %8d\n", c.Status, c.Channel, c.Count)
		total += c.Count
	}
	cmd.Printf("%-19s %8d\n", "total", total)
	return nil
}
