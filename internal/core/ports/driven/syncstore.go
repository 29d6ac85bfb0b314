package driven

import (
	"context"
	"time"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
)

// SyncRecordStore persists per-item sync state.
type SyncRecordStore interface {
	// Get retrieves the record for a key.
	// Returns domain.ErrNotFound if the item was never tracked.
	Get(ctx context.Context, key domain.SyncKey) (*domain.SyncRecord, error)

	// Save inserts or updates the record for its key.
	Save(ctx context.Context, record *domain.SyncRecord) error

	// List returns every tracked record.
	List(ctx context.Context) ([]domain.SyncRecord, error)

	// ListOrphaned returns records whose product no longer exists in the
	// source and which are not yet marked deleted.
	ListOrphaned(ctx context.Context) ([]domain.SyncRecord, error)

	// MarkDeleted marks every record of a product and SKU as deleted.
	// Returns the number of records touched.
	MarkDeleted(ctx context.Context, productID int64, sku string, at time.Time) (int, error)

	// CountByStatus summarises records by status and channel.
	CountByStatus(ctx context.Context) ([]domain.StatusCount, error)
}
