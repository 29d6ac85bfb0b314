package statefile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
	"github.com/omarcs/lia-woocommerce/internal/logger"
)

// ==================== Watermark Tests ====================

func TestWatermarkStore_LoadMissing(t *testing.T) {
	store := NewWatermarkStore(filepath.Join(t.TempDir(), "last_sync.json"))

	mark, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Nil(t, mark)
}

func TestWatermarkStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "last_sync.json")
	store := NewWatermarkStore(path)
	started := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	err := store.Save(context.Background(), domain.Watermark{LastSync: started, UpdatedAt: started.Add(time.Minute)})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"last_sync": "2026-06-01T08:00:00Z"`)

	mark, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, mark)
	assert.Equal(t, started, mark.LastSync)
	assert.Equal(t, started.Add(time.Minute), mark.UpdatedAt)
}

func TestWatermarkStore_LoadZonelessTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_sync.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"last_sync": "2026-05-30T14:22:10.123456", "updated_at": "2026-05-30T14:25:00.000001"}`), 0600))

	mark, err := NewWatermarkStore(path).Load(context.Background())

	require.NoError(t, err)
	require.NotNil(t, mark)
	assert.Equal(t, time.Date(2026, 5, 30, 14, 22, 10, 0, time.UTC), mark.LastSync)
}

func TestWatermarkStore_LoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_sync.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"last_sync": "yesterday"}`), 0600))

	_, err := NewWatermarkStore(path).Load(context.Background())

	assert.Error(t, err)
}

// ==================== Inventory Tests ====================

func TestInventoryFile_LoadMissing(t *testing.T) {
	buf := new(bytes.Buffer)
	source := NewInventoryFile(filepath.Join(t.TempDir(), "local_stock.json"), logger.New(buf, false))

	inv, err := source.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, inv)
	assert.Contains(t, buf.String(), "not found")
}

func TestInventoryFile_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local_stock.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"CENTRO": {"PROD-LOC-1": 0, "PROD-LOC-2": 4},
		"NORTE": {"PROD-LOC-1": 7}
	}`), 0600))

	inv, err := NewInventoryFile(path, logger.Nop()).Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[string]int{"CENTRO": 0, "NORTE": 7}, inv["PROD-LOC-1"])
	store, qty := inv.ResolveStore("PROD-LOC-1", "DEFAULT", 1)
	assert.Equal(t, "NORTE", store)
	assert.Equal(t, 7, qty)
}

func TestInventoryFile_LoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local_stock.json")
	require.NoError(t, os.WriteFile(path, []byte(`["not", "a", "map"]`), 0600))

	_, err := NewInventoryFile(path, logger.Nop()).Load(context.Background())

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
