package memory

import (
	"context"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
	"github.com/omarcs/lia-woocommerce/internal/core/ports/driven"
)

// Ensure Inventory implements the interface.
var _ driven.InventorySource = Inventory(nil)

// Inventory is a fixed driven.InventorySource.
type Inventory domain.LocalInventory

// Load returns the inventory.
func (i Inventory) Load(_ context.Context) (domain.LocalInventory, error) {
	if i == nil {
		return domain.LocalInventory{}, nil
	}
	return domain.LocalInventory(i), nil
}
