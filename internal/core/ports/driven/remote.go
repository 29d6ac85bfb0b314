package driven

import (
	"context"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
)

// RemoteCatalog is the merchant product catalog.
type RemoteCatalog interface {
	// InsertBatch upserts entries in one request. Results correlate to
	// entries by position. A returned error means the whole batch failed
	// and carries a domain.RemoteError with the HTTP status.
	InsertBatch(ctx context.Context, entries []domain.RemoteEntry) ([]domain.EntryResult, error)

	// Delete removes one product. A 404 is returned as an error; callers
	// decide whether absence counts as success.
	Delete(ctx context.Context, remoteID string) error
}
