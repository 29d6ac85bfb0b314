package services

import (
	"context"
	"fmt"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
	"github.com/omarcs/lia-woocommerce/internal/core/ports/driven"
	"github.com/omarcs/lia-woocommerce/internal/logger"
)

// DeletionReconciler removes remote items whose source product is gone.
type DeletionReconciler struct {
	records  driven.SyncRecordStore
	remote   driven.RemoteCatalog
	tracker  *SyncTracker
	retry    *RetryExecutor
	stats    *PipelineStats
	attempts int
	language string
	country  string
	log      *logger.Logger
}

// NewDeletionReconciler creates a reconciler. language and country rebuild
// remote IDs for records that never stored one.
func NewDeletionReconciler(
	records driven.SyncRecordStore,
	remote driven.RemoteCatalog,
	tracker *SyncTracker,
	retry *RetryExecutor,
	stats *PipelineStats,
	attempts int,
	language, country string,
	log *logger.Logger,
) *DeletionReconciler {
	return &DeletionReconciler{
		records:  records,
		remote:   remote,
		tracker:  tracker,
		retry:    retry,
		stats:    stats,
		attempts: attempts,
		language: language,
		country:  country,
		log:      log,
	}
}

type orphanGroup struct {
	productID int64
	sku       string
	records   []domain.SyncRecord
}

// Reconcile deletes orphaned items remotely and returns how many remote
// deletions succeeded. An item already absent remotely counts as deleted.
// Records are marked deleted only when every channel of the product was
// removed, so partial failures are retried next run.
func (r *DeletionReconciler) Reconcile(ctx context.Context) (int, error) {
	orphans, err := r.records.ListOrphaned(ctx)
	if err != nil {
		return 0, fmt.Errorf("list orphaned records: %w", err)
	}
	if len(orphans) == 0 {
		r.log.Debug("No orphaned items")
		return 0, nil
	}
	r.log.Warn("Detected %d orphaned item(s)", len(orphans))

	deleted := 0
	for _, g := range groupOrphans(orphans) {
		complete := true
		for _, rec := range g.records {
			if r.delete(ctx, rec) {
				deleted++
			} else {
				complete = false
			}
		}
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		if complete {
			if err := r.tracker.MarkDeleted(ctx, g.productID, g.sku); err != nil {
				return deleted, err
			}
		}
	}

	r.stats.AddDeleted(deleted)
	r.log.Info("Deleted %d/%d orphaned item(s)", deleted, len(orphans))
	return deleted, nil
}

func (r *DeletionReconciler) delete(ctx context.Context, rec domain.SyncRecord) bool {
	remoteID := rec.RemoteItemID
	if remoteID == "" {
		remoteID = domain.RemoteID(rec.Key.Channel, r.language, r.country, rec.Key.SKU)
	}

	out := Execute(ctx, r.retry, "delete "+remoteID, r.attempts, func(ctx context.Context) domain.Outcome[bool] {
		err := r.remote.Delete(ctx, remoteID)
		if err == nil {
			return domain.Success(true)
		}
		if domain.IsNotFoundStatus(domain.StatusOf(err)) {
			r.log.Debug("%s already absent remotely", remoteID)
			return domain.Success(true)
		}
		return domain.FailureFrom[bool](err)
	})
	if !out.OK() {
		r.log.Error("Could not delete %s: %v", remoteID, out.Err())
	}
	return out.OK()
}

func groupOrphans(records []domain.SyncRecord) []orphanGroup {
	var groups []orphanGroup
	index := make(map[string]int)
	for _, rec := range records {
		id := fmt.Sprintf("%d/%s", rec.Key.ProductID, rec.Key.SKU)
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, orphanGroup{productID: rec.Key.ProductID, sku: rec.Key.SKU})
		}
		groups[i].records = append(groups[i].records, rec)
	}
	return groups
}
