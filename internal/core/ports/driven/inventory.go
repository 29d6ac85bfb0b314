package driven

import (
	"context"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
)

// InventorySource provides per-store stock for local items.
type InventorySource interface {
	// Load reads the inventory once per run. A missing source yields an
	// empty inventory, a malformed one an error.
	Load(ctx context.Context) (domain.LocalInventory, error)
}
