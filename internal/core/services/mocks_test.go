package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/omarcs/lia-woocommerce/internal/adapters/driven/storage/memory"
	"github.com/omarcs/lia-woocommerce/internal/core/domain"
	"github.com/omarcs/lia-woocommerce/internal/core/ports/driven"
	"github.com/omarcs/lia-woocommerce/internal/logger"
)

// --- Mock implementations for pipeline testing ---

// mockRemote implements driven.RemoteCatalog for testing.
type mockRemote struct {
	mu sync.Mutex

	// calls records every InsertBatch request, including failed attempts.
	calls [][]domain.RemoteEntry

	// batchErrs fails the n-th InsertBatch call with the given error.
	batchErrs map[int]error

	// rejectSKU fails individual entries by offer ID.
	rejectSKU map[string]string

	// dropSKU omits entries from the response.
	dropSKU map[string]bool

	deleted   []string
	deleteErr map[string]error
}

var _ driven.RemoteCatalog = (*mockRemote)(nil)

func newMockRemote() *mockRemote {
	return &mockRemote{
		batchErrs: make(map[int]error),
		rejectSKU: make(map[string]string),
		dropSKU:   make(map[string]bool),
		deleteErr: make(map[string]error),
	}
}

func (m *mockRemote) InsertBatch(_ context.Context, entries []domain.RemoteEntry) ([]domain.EntryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := len(m.calls)
	m.calls = append(m.calls, append([]domain.RemoteEntry(nil), entries...))
	if err, ok := m.batchErrs[call]; ok {
		return nil, err
	}

	results := make([]domain.EntryResult, 0, len(entries))
	for _, e := range entries {
		if m.dropSKU[e.OfferID] {
			continue
		}
		r := domain.EntryResult{BatchID: e.BatchID, RemoteID: e.RemoteID}
		if msg, ok := m.rejectSKU[e.OfferID]; ok {
			r.Errors = []string{msg}
		}
		results = append(results, r)
	}
	return results, nil
}

func (m *mockRemote) Delete(_ context.Context, remoteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.deleteErr[remoteID]; ok {
		return err
	}
	m.deleted = append(m.deleted, remoteID)
	return nil
}

func (m *mockRemote) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockRemote) sentOfferIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, call := range m.calls {
		for _, e := range call {
			ids = append(ids, e.OfferID)
		}
	}
	return ids
}

// failingCatalog implements driven.CatalogReader and always errors.
type failingCatalog struct{}

func (failingCatalog) ListPublished(context.Context) ([]domain.CatalogItem, error) {
	return nil, fmt.Errorf("connection refused")
}

func (failingCatalog) LastModified(context.Context, int64) (time.Time, error) {
	return time.Time{}, fmt.Errorf("connection refused")
}

// staticCatalog returns its items verbatim, including ones without SKU.
type staticCatalog []domain.CatalogItem

func (c staticCatalog) ListPublished(context.Context) ([]domain.CatalogItem, error) {
	return c, nil
}

func (c staticCatalog) LastModified(_ context.Context, id int64) (time.Time, error) {
	for _, item := range c {
		if item.ID == id {
			return item.LastModified, nil
		}
	}
	return time.Time{}, domain.ErrNotFound
}

// --- Fixtures ---

var baseTime = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

func product(id int64, sku string, visibility domain.Visibility) domain.CatalogItem {
	return domain.CatalogItem{
		ID:            id,
		SKU:           sku,
		Title:         "Producto " + sku,
		Description:   "Descripción de " + sku,
		Price:         "199.90",
		StockQuantity: 5,
		StockStatus:   domain.StockInStock,
		Visibility:    visibility,
		ImageURL:      "https://shop.example/img/" + sku + ".jpg",
		LastModified:  baseTime,
	}
}

func testSettings() domain.Settings {
	s := domain.DefaultSettings()
	s.Merchant.MerchantID = 1
	s.Retry.Unit = time.Millisecond
	s.Retry.RateLimitWait = time.Millisecond
	return s
}

type fixture struct {
	catalog  *memory.Catalog
	records  *memory.SyncRecordStore
	marks    *memory.WatermarkStore
	remote   *mockRemote
	settings domain.Settings
	clock    time.Time
}

func newFixture(t *testing.T, items ...domain.CatalogItem) *fixture {
	t.Helper()
	catalog := memory.NewCatalog(items...)
	return &fixture{
		catalog:  catalog,
		records:  memory.NewSyncRecordStore(catalog),
		marks:    memory.NewWatermarkStore(),
		remote:   newMockRemote(),
		settings: testSettings(),
		clock:    baseTime.Add(time.Hour),
	}
}

func (f *fixture) now() time.Time {
	return f.clock
}

func (f *fixture) retry() *RetryExecutor {
	return NewRetryExecutor(RetryPolicyFrom(f.settings.Retry), logger.Nop())
}

func (f *fixture) tracker() *SyncTracker {
	tr := NewSyncTracker(f.records, f.catalog, logger.Nop())
	tr.now = f.now
	return tr
}

func (f *fixture) pipeline(inv driven.InventorySource) *Pipeline {
	p := NewPipeline(PipelineDeps{
		Catalog:    f.catalog,
		Records:    f.records,
		Remote:     f.remote,
		Watermarks: f.marks,
		Inventory:  inv,
	}, f.settings, f.retry(), logger.Nop())
	p.now = f.now
	return p
}

func (f *fixture) uploader(stats *PipelineStats, batchSize int) *BatchUploader {
	return NewBatchUploader(f.remote, NewTransformer(f.settings.Merchant), f.tracker(), f.retry(), stats,
		UploaderConfig{BatchSize: batchSize, Attempts: f.settings.Retry.UploadAttempts, DefaultStore: "DEFAULT"},
		logger.Nop())
}

func (f *fixture) record(t *testing.T, id int64, sku string, ch domain.Channel) *domain.SyncRecord {
	t.Helper()
	rec, err := f.records.Get(context.Background(), domain.SyncKey{ProductID: id, SKU: sku, Channel: ch})
	if err != nil {
		t.Fatalf("get record %d/%s/%s: %v", id, sku, ch, err)
	}
	return rec
}
