package driven

import (
	"context"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
)

// WatermarkStore persists the start time of the last completed run.
type WatermarkStore interface {
	// Load returns the watermark, or nil if no run has completed yet.
	Load(ctx context.Context) (*domain.Watermark, error)

	// Save replaces the watermark.
	Save(ctx context.Context, mark domain.Watermark) error
}
