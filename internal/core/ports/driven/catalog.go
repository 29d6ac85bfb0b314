package driven

import (
	"context"
	"time"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
)

// CatalogReader reads the source catalog. It never writes.
type CatalogReader interface {
	// ListPublished returns every published product with a non-empty SKU.
	ListPublished(ctx context.Context) ([]domain.CatalogItem, error)

	// LastModified returns the current modification time of a product.
	// Returns domain.ErrNotFound if the product no longer exists.
	LastModified(ctx context.Context, productID int64) (time.Time, error)
}
