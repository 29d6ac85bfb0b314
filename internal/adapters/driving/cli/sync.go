package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
)

var (
	syncFull        bool
	syncBatch       int
	syncSkipCleanup bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise changed products with Merchant Center",
	Long: `Detects products created, modified or previously failed since the last
completed run and uploads them in batches. Products deleted from the shop
are removed from Merchant Center first. The first run, or --full, uploads
every published product.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncFull, "full", false, "upload every published product")
	syncCmd.Flags().IntVar(&syncBatch, "batch", 0, "entries per batch (1-100), overrides the config")
	syncCmd.Flags().BoolVar(&syncSkipCleanup, "skip-cleanup", false, "skip removing deleted products")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	settings, log, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("batch") && (syncBatch < 1 || syncBatch > domain.MaxBatchSize) {
		return &domain.ConfigurationError{Problems: []string{
			fmt.Sprintf("--batch %d must be between 1 and %d", syncBatch, domain.MaxBatchSize),
		}}
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	pipeline, closeFn, err := newPipeline(ctx, settings, log)
	if err != nil {
		return err
	}
	defer closeFn()

	report, err := pipeline.Run(ctx, domain.RunOptions{
		Full:         syncFull,
		SkipDeletion: syncSkipCleanup,
		BatchSize:    syncBatch,
	})
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	renderReport(cmd.OutOrStdout(), report)
	return nil
}
