package services

import (
	"context"
	"fmt"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
	"github.com/omarcs/lia-woocommerce/internal/core/ports/driven"
	"github.com/omarcs/lia-woocommerce/internal/logger"
)

// ChangeDetector selects the items a run must send and partitions them by channel.
type ChangeDetector struct {
	catalog     driven.CatalogReader
	records     driven.SyncRecordStore
	partitioner domain.Partitioner
	ceiling     int
	log         *logger.Logger
}

// NewChangeDetector creates a detector. Failed items whose error count
// reaches ceiling are left for manual intervention.
func NewChangeDetector(
	catalog driven.CatalogReader,
	records driven.SyncRecordStore,
	partitioner domain.Partitioner,
	ceiling int,
	log *logger.Logger,
) *ChangeDetector {
	return &ChangeDetector{
		catalog:     catalog,
		records:     records,
		partitioner: partitioner,
		ceiling:     ceiling,
		log:         log,
	}
}

// Detect returns the items to sync. In full mode every published item is
// returned. In incremental mode an item is returned when it was never
// tracked, changed since it was last seen, failed and is still under the
// retry ceiling, or was deleted and has come back.
func (d *ChangeDetector) Detect(ctx context.Context, mode domain.SyncMode) (domain.Detection, error) {
	det := domain.Detection{Mode: mode}

	items, err := d.catalog.ListPublished(ctx)
	if err != nil {
		return det, fmt.Errorf("list published products: %w", err)
	}

	var tracked map[domain.SyncKey]domain.SyncRecord
	if mode != domain.ModeFull {
		records, err := d.records.List(ctx)
		if err != nil {
			return det, fmt.Errorf("list sync records: %w", err)
		}
		tracked = make(map[domain.SyncKey]domain.SyncRecord, len(records))
		for _, rec := range records {
			tracked[rec.Key] = rec
		}
	}

	for _, item := range items {
		if !item.HasSKU() {
			continue
		}
		channel := d.partitioner.ChannelOf(item)

		if mode != domain.ModeFull && !d.selectIncremental(item, channel, tracked, &det) {
			continue
		}

		if channel == domain.ChannelLocal {
			det.Local = append(det.Local, item)
		} else {
			det.Online = append(det.Online, item)
		}
	}

	d.log.Info("Detected %d item(s) in %s mode: %d online, %d local",
		det.Total(), mode, len(det.Online), len(det.Local))
	if mode != domain.ModeFull {
		d.log.Debug("New %d, modified %d, retried %d", det.New, det.Modified, det.Retried)
	}
	if det.NeedsIntervention > 0 {
		d.log.Warn("%d item(s) reached %d failures and need manual intervention", det.NeedsIntervention, d.ceiling)
	}
	return det, nil
}

func (d *ChangeDetector) selectIncremental(
	item domain.CatalogItem,
	channel domain.Channel,
	tracked map[domain.SyncKey]domain.SyncRecord,
	det *domain.Detection,
) bool {
	rec, ok := tracked[item.Key(channel)]
	switch {
	case !ok, rec.Status == domain.StatusDeleted:
		det.New++
		return true
	case rec.ChangedSince(item.LastModified):
		det.Modified++
		return true
	case rec.Retryable(d.ceiling):
		det.Retried++
		return true
	case rec.Status == domain.StatusFailed:
		det.NeedsIntervention++
	}
	return false
}
