package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
	"github.com/omarcs/lia-woocommerce/internal/core/ports/driven"
)

// Ensure SyncRecordStore implements the interface.
var _ driven.SyncRecordStore = (*SyncRecordStore)(nil)

// SyncRecordStore is an in-memory implementation of driven.SyncRecordStore.
// Orphan detection consults the catalog it was created with.
type SyncRecordStore struct {
	mu      sync.RWMutex
	records map[domain.SyncKey]domain.SyncRecord
	catalog *Catalog
}

// NewSyncRecordStore creates a new in-memory record store.
// A nil catalog means no record is ever orphaned.
func NewSyncRecordStore(catalog *Catalog) *SyncRecordStore {
	return &SyncRecordStore{
		records: make(map[domain.SyncKey]domain.SyncRecord),
		catalog: catalog,
	}
}

// Get retrieves the record for a key.
func (s *SyncRecordStore) Get(_ context.Context, key domain.SyncKey) (*domain.SyncRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

// Save inserts or updates a record.
func (s *SyncRecordStore) Save(_ context.Context, record *domain.SyncRecord) error {
	if record == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Key] = *record
	return nil
}

// List returns every record ordered by key.
func (s *SyncRecordStore) List(_ context.Context) ([]domain.SyncRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted(func(domain.SyncRecord) bool { return true }), nil
}

// ListOrphaned returns non-deleted records whose product is gone.
func (s *SyncRecordStore) ListOrphaned(_ context.Context) ([]domain.SyncRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil {
		return nil, nil
	}
	return s.sorted(func(r domain.SyncRecord) bool {
		return r.Status != domain.StatusDeleted && !s.catalog.Exists(r.Key.ProductID)
	}), nil
}

// MarkDeleted marks every record of a product and SKU as deleted.
func (s *SyncRecordStore) MarkDeleted(_ context.Context, productID int64, sku string, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, rec := range s.records {
		if key.ProductID == productID && key.SKU == sku {
			rec.MarkDeleted(at)
			s.records[key] = rec
			n++
		}
	}
	return n, nil
}

// CountByStatus groups records by status and channel.
func (s *SyncRecordStore) CountByStatus(_ context.Context) ([]domain.StatusCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type group struct {
		status  domain.SyncStatus
		channel domain.Channel
	}
	counts := make(map[group]int)
	for _, rec := range s.records {
		counts[group{rec.Status, rec.Key.Channel}]++
	}

	out := make([]domain.StatusCount, 0, len(counts))
	for g, n := range counts {
		out = append(out, domain.StatusCount{Status: g.status, Channel: g.channel, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status < out[j].Status
		}
		return out[i].Channel < out[j].Channel
	})
	return out, nil
}

func (s *SyncRecordStore) sorted(keep func(domain.SyncRecord) bool) []domain.SyncRecord {
	out := make([]domain.SyncRecord, 0, len(s.records))
	for _, rec := range s.records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Key, out[j].Key
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		if a.SKU != b.SKU {
			return a.SKU < b.SKU
		}
		return a.Channel < b.Channel
	})
	return out
}
