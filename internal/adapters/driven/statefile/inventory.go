package statefile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
	"github.com/omarcs/lia-woocommerce/internal/core/ports/driven"
	"github.com/omarcs/lia-woocommerce/internal/logger"
)

// Ensure InventoryFile implements the interface.
var _ driven.InventorySource = (*InventoryFile)(nil)

// InventoryFile reads local stock from a {"store": {"sku": qty}} JSON document.
type InventoryFile struct {
	path string
	log  *logger.Logger
}

// NewInventoryFile creates a source for the file at path.
func NewInventoryFile(path string, log *logger.Logger) *InventoryFile {
	return &InventoryFile{path: path, log: log}
}

// Load reads and inverts the stock document. A missing file is logged and
// yields an empty inventory so every local item falls back to the default store.
func (f *InventoryFile) Load(_ context.Context) (domain.LocalInventory, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		f.log.Warn("local stock file %s not found, using default store", f.path)
		return domain.LocalInventory{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading local stock: %w", err)
	}

	var byStore map[string]map[string]int
	if err := json.Unmarshal(data, &byStore); err != nil {
		return nil, fmt.Errorf("%w: local stock file %s: %v", domain.ErrInvalidInput, f.path, err)
	}
	inv := domain.InvertStoreStock(byStore)
	f.log.Debug("loaded stock for %d skus across %d stores", len(inv), len(byStore))
	return inv, nil
}
