package driving

import (
	"context"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
)

// Pipeline runs one synchronisation of the shop catalog.
type Pipeline interface {
	// Run executes detection, deletion and upload, then advances the watermark.
	// Per-item failures are reported in the RunReport, not as an error.
	Run(ctx context.Context, opts domain.RunOptions) (*domain.RunReport, error)
}

// StatusReporter summarises tracked sync state.
type StatusReporter interface {
	// Counts returns record counts grouped by status and channel.
	Counts(ctx context.Context) ([]domain.StatusCount, error)

	// LastRun returns the watermark of the last completed run, or nil.
	LastRun(ctx context.Context) (*domain.Watermark, error)
}
