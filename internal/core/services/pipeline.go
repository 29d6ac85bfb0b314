package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
	"github.com/omarcs/lia-woocommerce/internal/core/ports/driven"
	"github.com/omarcs/lia-woocommerce/internal/core/ports/driving"
	"github.com/omarcs/lia-woocommerce/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.Pipeline = (*Pipeline)(nil)

// PipelineDeps are the driven ports a run needs.
// Inventory is optional.
type PipelineDeps struct {
	Catalog    driven.CatalogReader
	Records    driven.SyncRecordStore
	Remote     driven.RemoteCatalog
	Watermarks driven.WatermarkStore
	Inventory  driven.InventorySource
}

// Pipeline orchestrates one sync run: detect, reconcile deletions,
// upload each channel and advance the watermark.
type Pipeline struct {
	deps     PipelineDeps
	settings domain.Settings
	retry    *RetryExecutor
	log      *logger.Logger
	now      func() time.Time
}

// NewPipeline creates a pipeline.
func NewPipeline(deps PipelineDeps, settings domain.Settings, retry *RetryExecutor, log *logger.Logger) *Pipeline {
	if retry == nil {
		retry = NewRetryExecutor(RetryPolicyFrom(settings.Retry), log)
	}
	return &Pipeline{
		deps:     deps,
		settings: settings,
		retry:    retry,
		log:      log,
		now:      utcNow,
	}
}

// Run executes a sync. Errors reading the watermark, catalog, tracking
// state or inventory abort the run before anything is sent. The
// watermark only advances when the run completes.
func (p *Pipeline) Run(ctx context.Context, opts domain.RunOptions) (*domain.RunReport, error) {
	startedAt := p.now()
	runID := uuid.NewString()
	log := p.log.With("run_id", runID)

	mark, err := p.deps.Watermarks.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load watermark: %w", err)
	}
	mode := domain.ModeIncremental
	switch {
	case opts.Full:
		mode = domain.ModeFull
	case mark == nil:
		log.Info("No previous run recorded, running a full sync")
		mode = domain.ModeFull
	default:
		log.Info("Last completed run started at %s", mark.LastSync.Format(time.RFC3339))
	}

	stats := NewPipelineStats()
	tracker := NewSyncTracker(p.deps.Records, p.deps.Catalog, log)
	tracker.now = p.now

	log.Section("Detect")
	detector := NewChangeDetector(p.deps.Catalog, p.deps.Records, domain.Partitioner{
		Classifier:  p.settings.Sync.Classifier,
		LocalPrefix: p.settings.Sync.LocalSKUPrefix,
	}, p.settings.Sync.RetryCeiling, log)
	detection, err := detector.Detect(ctx, mode)
	if err != nil {
		return nil, fmt.Errorf("detect changes: %w", err)
	}

	inventory := domain.LocalInventory{}
	if p.deps.Inventory != nil {
		inventory, err = p.deps.Inventory.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load local inventory: %w", err)
		}
	}

	if opts.SkipDeletion || p.settings.Sync.SkipDeletion {
		log.Info("Deletion pass skipped")
	} else {
		log.Section("Reconcile deletions")
		reconciler := NewDeletionReconciler(p.deps.Records, p.deps.Remote, tracker, p.retry, stats,
			p.settings.Retry.DeleteAttempts, p.settings.Merchant.Language, p.settings.Merchant.Country, log)
		if _, err := reconciler.Reconcile(ctx); err != nil {
			return nil, fmt.Errorf("reconcile deletions: %w", err)
		}
	}

	batchSize := p.settings.Sync.BatchSize
	if opts.BatchSize > 0 {
		batchSize = opts.BatchSize
	}
	uploader := NewBatchUploader(p.deps.Remote, NewTransformer(p.settings.Merchant), tracker, p.retry, stats,
		UploaderConfig{
			BatchSize:    batchSize,
			Attempts:     p.settings.Retry.UploadAttempts,
			DefaultStore: p.settings.Merchant.StoreCode,
		}, log)

	for _, channel := range domain.Channels {
		log.Section("Upload " + channel.String())
		if _, err := uploader.Upload(ctx, detection.Items(channel), channel, inventory); err != nil {
			return nil, err
		}
	}

	if err := p.deps.Watermarks.Save(ctx, domain.Watermark{LastSync: startedAt, UpdatedAt: p.now()}); err != nil {
		return nil, fmt.Errorf("save watermark: %w", err)
	}

	report := &domain.RunReport{
		RunID:     runID,
		Mode:      mode,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Detection: detection,
		Stats:     stats.Snapshot(),
	}
	log.Info("Run complete in %s: %d sent, %d invalid, %d errors, %d deleted",
		report.Duration.Round(time.Millisecond), report.Stats.Valid, report.Stats.Invalid,
		report.Stats.Errors, report.Stats.Deleted)
	return report, nil
}

// Ensure StatusService implements the interface.
var _ driving.StatusReporter = (*StatusService)(nil)

// StatusService reports on tracked state without touching the remote catalog.
type StatusService struct {
	records    driven.SyncRecordStore
	watermarks driven.WatermarkStore
}

// NewStatusService creates a status service.
func NewStatusService(records driven.SyncRecordStore, watermarks driven.WatermarkStore) *StatusService {
	return &StatusService{records: records, watermarks: watermarks}
}

// Counts returns record counts grouped by status and channel.
func (s *StatusService) Counts(ctx context.Context) ([]domain.StatusCount, error) {
	counts, err := s.records.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	return counts, nil
}

// LastRun returns the watermark of the last completed run.
func (s *StatusService) LastRun(ctx context.Context) (*domain.Watermark, error) {
	if s.watermarks == nil {
		return nil, nil
	}
	return s.watermarks.Load(ctx)
}
