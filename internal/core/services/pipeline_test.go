package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarcs/lia-woocommerce/internal/adapters/driven/storage/memory"
	"github.com/omarcs/lia-woocommerce/internal/core/domain"
	"github.com/omarcs/lia-woocommerce/internal/logger"
)

func TestPipeline_FirstRunSendsNewItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t,
		product(1, "ONLINE-1", domain.VisibilityVisible),
		product(2, "ONLINE-2", domain.VisibilityVisible),
		product(3, "LOCAL-1", domain.VisibilityHidden),
	)

	report, err := f.pipeline(memory.Inventory{"LOCAL-1": {"STORE-9": 2}}).Run(ctx, domain.RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.ModeFull, report.Mode, "no watermark means full sync")
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Stats.Sent[domain.ChannelOnline])
	assert.Equal(t, 1, report.Stats.Sent[domain.ChannelLocal])
	assert.Equal(t, 3, report.Stats.Valid)

	assert.Equal(t, domain.StatusSynced, f.record(t, 1, "ONLINE-1", domain.ChannelOnline).Status)
	assert.Equal(t, domain.StatusSynced, f.record(t, 3, "LOCAL-1", domain.ChannelLocal).Status)

	mark, err := f.marks.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, mark)
	assert.Equal(t, f.clock, mark.LastSync)
}

func TestPipeline_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t,
		product(1, "A", domain.VisibilityVisible),
		product(2, "B", domain.VisibilityHidden),
	)
	p := f.pipeline(nil)

	_, err := p.Run(ctx, domain.RunOptions{})
	require.NoError(t, err)
	calls := f.remote.callCount()

	f.clock = f.clock.Add(time.Hour)
	report, err := p.Run(ctx, domain.RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.ModeIncremental, report.Mode)
	assert.Zero(t, report.Detection.Total())
	assert.Equal(t, calls, f.remote.callCount(), "second run must send nothing")
}

func TestPipeline_ModifiedItemResent(t *testing.T) {
	ctx := context.Background()
	item := product(1, "A", domain.VisibilityVisible)
	f := newFixture(t, item, product(2, "B", domain.VisibilityVisible))
	p := f.pipeline(nil)
	_, err := p.Run(ctx, domain.RunOptions{})
	require.NoError(t, err)

	item.LastModified = baseTime.Add(2 * time.Hour)
	item.Price = "249.00"
	f.catalog.Put(item)
	f.clock = f.clock.Add(3 * time.Hour)

	report, err := p.Run(ctx, domain.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Detection.Modified)
	assert.Equal(t, 1, report.Stats.Sent[domain.ChannelOnline])
	last := f.remote.calls[len(f.remote.calls)-1]
	assert.Equal(t, "249.00", last[0].Price.Value)
}

func TestPipeline_FullFlagForcesResend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, product(1, "A", domain.VisibilityVisible))
	p := f.pipeline(nil)
	_, err := p.Run(ctx, domain.RunOptions{})
	require.NoError(t, err)

	report, err := p.Run(ctx, domain.RunOptions{Full: true})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeFull, report.Mode)
	assert.Equal(t, 1, report.Stats.Sent[domain.ChannelOnline])
}

func TestPipeline_VanishedItemDeleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t,
		product(1, "KEEP", domain.VisibilityVisible),
		product(2, "DROP", domain.VisibilityVisible),
	)
	p := f.pipeline(nil)
	_, err := p.Run(ctx, domain.RunOptions{})
	require.NoError(t, err)

	f.catalog.Remove(2)
	report, err := p.Run(ctx, domain.RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Stats.Deleted)
	assert.Equal(t, []string{"online:es:MX:DROP"}, f.remote.deleted)
	assert.Equal(t, domain.StatusDeleted, f.record(t, 2, "DROP", domain.ChannelOnline).Status)
	assert.Equal(t, domain.StatusSynced, f.record(t, 1, "KEEP", domain.ChannelOnline).Status)
}

func TestPipeline_SkipDeletion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, product(2, "DROP", domain.VisibilityVisible))
	p := f.pipeline(nil)
	_, err := p.Run(ctx, domain.RunOptions{})
	require.NoError(t, err)

	f.catalog.Remove(2)
	report, err := p.Run(ctx, domain.RunOptions{SkipDeletion: true})
	require.NoError(t, err)
	assert.Zero(t, report.Stats.Deleted)
	assert.Empty(t, f.remote.deleted)
}

func TestPipeline_FailedItemsRetriedUntilCeiling(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, product(1, "FLAKY", domain.VisibilityVisible))
	f.remote.rejectSKU["FLAKY"] = "invalid gtin"
	p := f.pipeline(nil)

	for run := 1; run <= 6; run++ {
		f.clock = f.clock.Add(time.Hour)
		_, err := p.Run(ctx, domain.RunOptions{})
		require.NoError(t, err)
	}

	rec := f.record(t, 1, "FLAKY", domain.ChannelOnline)
	assert.Equal(t, 5, rec.ErrorCount, "sixth run leaves the item alone")
	assert.Equal(t, 5, f.remote.callCount())

	delete(f.remote.rejectSKU, "FLAKY")
	item := product(1, "FLAKY", domain.VisibilityVisible)
	item.LastModified = f.clock.Add(time.Minute)
	f.catalog.Put(item)
	f.clock = f.clock.Add(time.Hour)

	_, err := p.Run(ctx, domain.RunOptions{})
	require.NoError(t, err)
	rec = f.record(t, 1, "FLAKY", domain.ChannelOnline)
	assert.Equal(t, domain.StatusSynced, rec.Status)
	assert.Zero(t, rec.ErrorCount)
}

func TestPipeline_BatchSizeOverride(t *testing.T) {
	items := manyProducts(5)
	f := newFixture(t, items...)

	_, err := f.pipeline(nil).Run(context.Background(), domain.RunOptions{BatchSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, f.remote.callCount())
}

func TestPipeline_DetectErrorKeepsWatermark(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := NewPipeline(PipelineDeps{
		Catalog:    failingCatalog{},
		Records:    f.records,
		Remote:     f.remote,
		Watermarks: f.marks,
	}, f.settings, nil, logger.Nop())

	_, err := p.Run(ctx, domain.RunOptions{})
	require.Error(t, err)

	mark, err := f.marks.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, mark)
}

type brokenInventory struct{}

func (brokenInventory) Load(context.Context) (domain.LocalInventory, error) {
	return nil, assert.AnError
}

func TestPipeline_InventoryErrorAborts(t *testing.T) {
	f := newFixture(t, product(1, "A", domain.VisibilityVisible))

	_, err := f.pipeline(brokenInventory{}).Run(context.Background(), domain.RunOptions{})
	require.ErrorIs(t, err, assert.AnError)
	assert.Zero(t, f.remote.callCount())
}

func TestStatusService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, product(1, "A", domain.VisibilityVisible))
	_, err := f.pipeline(nil).Run(ctx, domain.RunOptions{})
	require.NoError(t, err)

	svc := NewStatusService(f.records, f.marks)
	counts, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.StatusCount{{Status: domain.StatusSynced, Channel: domain.ChannelOnline, Count: 1}}, counts)

	mark, err := svc.LastRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, mark)
}
