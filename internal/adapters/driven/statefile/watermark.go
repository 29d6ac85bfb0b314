package statefile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
	"github.com/omarcs/lia-woocommerce/internal/core/ports/driven"
)

// Ensure WatermarkStore implements the interface.
var _ driven.WatermarkStore = (*WatermarkStore)(nil)

// watermarkDoc is the on-disk shape of the watermark file.
type watermarkDoc struct {
	LastSync  string `json:"last_sync"`
	UpdatedAt string `json:"updated_at"`
}

// WatermarkStore keeps the watermark in a small JSON file.
type WatermarkStore struct {
	mu   sync.Mutex
	path string
}

// NewWatermarkStore creates a store for the file at path.
func NewWatermarkStore(path string) *WatermarkStore {
	return &WatermarkStore{path: path}
}

// Path returns the watermark file path.
func (s *WatermarkStore) Path() string {
	return s.path
}

// Load reads the watermark. A missing file means no run has completed.
func (s *WatermarkStore) Load(_ context.Context) (*domain.Watermark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading watermark: %w", err)
	}

	var doc watermarkDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing watermark %s: %w", s.path, err)
	}
	lastSync, err := parseTime(doc.LastSync)
	if err != nil {
		return nil, fmt.Errorf("parsing last_sync in %s: %w", s.path, err)
	}
	mark := &domain.Watermark{LastSync: lastSync}
	if doc.UpdatedAt != "" {
		if updated, err := parseTime(doc.UpdatedAt); err == nil {
			mark.UpdatedAt = updated
		}
	}
	return mark, nil
}

// Save replaces the watermark file atomically.
func (s *WatermarkStore) Save(_ context.Context, mark domain.Watermark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(watermarkDoc{
		LastSync:  mark.LastSync.UTC().Format(time.RFC3339),
		UpdatedAt: mark.UpdatedAt.UTC().Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path, data)
}

// parseTime accepts RFC 3339 and the zone-less ISO form older files used.
// Zone-less values are read as UTC.
func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC().Truncate(time.Second), nil
	}
	t, err := time.Parse("2006-01-02T15:04:05.999999", raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC().Truncate(time.Second), nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
