package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
	"github.com/omarcs/lia-woocommerce/internal/core/ports/driven"
	"github.com/omarcs/lia-woocommerce/internal/logger"
)

// SyncTracker applies outcomes to durable sync records.
type SyncTracker struct {
	records driven.SyncRecordStore
	catalog driven.CatalogReader
	log     *logger.Logger
	now     func() time.Time
}

// NewSyncTracker creates a tracker.
func NewSyncTracker(records driven.SyncRecordStore, catalog driven.CatalogReader, log *logger.Logger) *SyncTracker {
	return &SyncTracker{records: records, catalog: catalog, log: log, now: utcNow}
}

func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// Upsert records a remote outcome for a key. The current source
// modification time is stamped so the item is not re-detected until it
// changes again. An item that vanished from the source is skipped.
func (t *SyncTracker) Upsert(ctx context.Context, key domain.SyncKey, success bool, remoteID, errMsg string) error {
	return t.apply(ctx, key, func(rec *domain.SyncRecord, now time.Time, modified *time.Time) {
		if success {
			rec.Succeed(now, modified, remoteID)
		} else {
			rec.Fail(now, modified, errMsg)
		}
	})
}

// Reject records a local validation failure for a key.
func (t *SyncTracker) Reject(ctx context.Context, key domain.SyncKey, reason string) error {
	return t.apply(ctx, key, func(rec *domain.SyncRecord, now time.Time, modified *time.Time) {
		rec.Reject(now, modified, reason)
	})
}

// MarkDeleted marks every record of a product and SKU as deleted.
func (t *SyncTracker) MarkDeleted(ctx context.Context, productID int64, sku string) error {
	n, err := t.records.MarkDeleted(ctx, productID, sku, t.now())
	if err != nil {
		return fmt.Errorf("mark %d/%s deleted: %w", productID, sku, err)
	}
	t.log.Debug("Marked %d record(s) of %d/%s deleted", n, productID, sku)
	return nil
}

func (t *SyncTracker) apply(
	ctx context.Context,
	key domain.SyncKey,
	transition func(rec *domain.SyncRecord, now time.Time, modified *time.Time),
) error {
	modified, err := t.catalog.LastModified(ctx, key.ProductID)
	if errors.Is(err, domain.ErrNotFound) {
		t.log.Warn("Product %d (%s) vanished from the catalog, not tracking", key.ProductID, key.SKU)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read modification time of %s: %w", key, err)
	}
	modified = modified.UTC().Truncate(time.Second)

	rec, err := t.records.Get(ctx, key)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		rec = domain.NewSyncRecord(key)
	case err != nil:
		return fmt.Errorf("get record %s: %w", key, err)
	}

	transition(rec, t.now(), &modified)
	if err := t.records.Save(ctx, rec); err != nil {
		return fmt.Errorf("save record %s: %w", key, err)
	}
	return nil
}
