package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
	"github.com/omarcs/lia-woocommerce/internal/core/ports/driven"
	"github.com/omarcs/lia-woocommerce/internal/logger"
)

// UploaderConfig configures a BatchUploader.
type UploaderConfig struct {
	// BatchSize is the maximum number of entries per remote call.
	BatchSize int

	// Attempts is the retry budget for each batch.
	Attempts int

	// DefaultStore is used for local items missing from the inventory.
	DefaultStore string
}

// BatchUploader transforms items, sends them in bounded batches and
// records every outcome.
type BatchUploader struct {
	remote      driven.RemoteCatalog
	transformer *Transformer
	tracker     *SyncTracker
	retry       *RetryExecutor
	stats       *PipelineStats
	cfg         UploaderConfig
	log         *logger.Logger
}

// NewBatchUploader creates an uploader.
func NewBatchUploader(
	remote driven.RemoteCatalog,
	transformer *Transformer,
	tracker *SyncTracker,
	retry *RetryExecutor,
	stats *PipelineStats,
	cfg UploaderConfig,
	log *logger.Logger,
) *BatchUploader {
	if cfg.BatchSize < 1 || cfg.BatchSize > domain.MaxBatchSize {
		cfg.BatchSize = domain.MaxBatchSize
	}
	return &BatchUploader{
		remote:      remote,
		transformer: transformer,
		tracker:     tracker,
		retry:       retry,
		stats:       stats,
		cfg:         cfg,
		log:         log,
	}
}

// rejection is an item that failed local validation.
type rejection struct {
	key domain.SyncKey
	err *domain.ValidationError
}

// chunk is one unit of work handed from preparation to submission.
type chunk struct {
	entries  []domain.RemoteEntry
	rejected []rejection
}

// Upload sends items of one channel and returns how many were accepted.
// Preparation runs ahead of submission by at most one chunk. Every
// tracking write happens on the submitting side.
func (u *BatchUploader) Upload(
	ctx context.Context,
	items []domain.CatalogItem,
	channel domain.Channel,
	inventory domain.LocalInventory,
) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	u.log.Info("Uploading %d %s item(s) in batches of %d", len(items), channel, u.cfg.BatchSize)

	chunks := make(chan chunk, 1)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(chunks)
		return u.prepare(gctx, items, channel, inventory, chunks)
	})

	sent := 0
	batches := 0
	g.Go(func() error {
		for c := range chunks {
			for _, r := range c.rejected {
				u.log.Debug("Rejected %s: %v", r.key, r.err)
				if err := u.tracker.Reject(gctx, r.key, r.err.Error()); err != nil {
					return err
				}
			}
			if len(c.entries) == 0 {
				continue
			}
			batches++
			n, err := u.submit(gctx, channel, c.entries)
			sent += n
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return sent, fmt.Errorf("upload %s items: %w", channel, err)
	}
	u.log.Info("Sent %d/%d %s item(s) in %d batch(es)", sent, len(items), channel, batches)
	return sent, nil
}

func (u *BatchUploader) prepare(
	ctx context.Context,
	items []domain.CatalogItem,
	channel domain.Channel,
	inventory domain.LocalInventory,
	out chan<- chunk,
) error {
	var current chunk
	emit := func() error {
		select {
		case out <- current:
			current = chunk{}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for _, item := range items {
		store, qty := "", 0
		if channel == domain.ChannelLocal {
			store, qty = inventory.ResolveStore(item.SKU, u.cfg.DefaultStore, item.StockQuantity)
		}

		entry, v, err := u.transformer.Transform(item, channel, store, qty)
		u.stats.Observe(v)
		if err != nil {
			verr := &domain.ValidationError{Reason: domain.RejectTransform, Message: err.Error()}
			errors.As(err, &verr)
			u.stats.AddRejected(verr.Reason)
			current.rejected = append(current.rejected, rejection{key: item.Key(channel), err: verr})
			continue
		}

		entry.BatchID = int64(len(current.entries))
		current.entries = append(current.entries, entry)
		if len(current.entries) == u.cfg.BatchSize {
			if err := emit(); err != nil {
				return err
			}
		}
	}

	if len(current.entries) > 0 || len(current.rejected) > 0 {
		return emit()
	}
	return nil
}

// submit sends one batch and records the outcome of each entry.
func (u *BatchUploader) submit(ctx context.Context, channel domain.Channel, entries []domain.RemoteEntry) (int, error) {
	out := Execute(ctx, u.retry, "insert batch", u.cfg.Attempts, func(ctx context.Context) domain.Outcome[[]domain.EntryResult] {
		results, err := u.remote.InsertBatch(ctx, entries)
		if err != nil {
			return domain.FailureFrom[[]domain.EntryResult](err)
		}
		return domain.Success(results)
	})
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if !out.OK() {
		msg := fmt.Sprintf("batch failed after %d attempt(s): %v", out.Attempts(), out.Err())
		u.log.Error("Batch of %d %s item(s) failed: %v", len(entries), channel, out.Err())
		for _, e := range entries {
			if err := u.tracker.Upsert(ctx, e.Key, false, "", msg); err != nil {
				return 0, err
			}
			u.stats.AddError()
		}
		return 0, nil
	}

	byPosition := make(map[int64]domain.EntryResult, len(out.Value()))
	for _, r := range out.Value() {
		byPosition[r.BatchID] = r
	}

	sent := 0
	for _, e := range entries {
		r, ok := byPosition[e.BatchID]
		switch {
		case !ok:
			if err := u.tracker.Upsert(ctx, e.Key, false, "", "no result returned for entry"); err != nil {
				return sent, err
			}
			u.stats.AddInvalid()
		case r.OK():
			remoteID := r.RemoteID
			if remoteID == "" {
				remoteID = e.RemoteID
			}
			if err := u.tracker.Upsert(ctx, e.Key, true, remoteID, ""); err != nil {
				return sent, err
			}
			u.stats.AddSent(channel)
			sent++
		default:
			u.log.Warn("Item %s rejected remotely: %s", e.OfferID, r.Message())
			if err := u.tracker.Upsert(ctx, e.Key, false, "", r.Message()); err != nil {
				return sent, err
			}
			u.stats.AddInvalid()
		}
	}
	return sent, nil
}
