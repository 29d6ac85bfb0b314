package memory

import (
	"context"
	"sync"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
	"github.com/omarcs/lia-woocommerce/internal/core/ports/driven"
)

// Ensure WatermarkStore implements the interface.
var _ driven.WatermarkStore = (*WatermarkStore)(nil)

// WatermarkStore is an in-memory implementation of driven.WatermarkStore.
type WatermarkStore struct {
	mu   sync.RWMutex
	mark *domain.Watermark
}

// NewWatermarkStore creates an empty watermark store.
func NewWatermarkStore() *WatermarkStore {
	return &WatermarkStore{}
}

// Load returns the stored watermark, or nil.
func (s *WatermarkStore) Load(_ context.Context) (*domain.Watermark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.mark == nil {
		return nil, nil
	}
	mark := *s.mark
	return &mark, nil
}

// Save replaces the watermark.
func (s *WatermarkStore) Save(_ context.Context, mark domain.Watermark) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mark = &mark
	return nil
}
