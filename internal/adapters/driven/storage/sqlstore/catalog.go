package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
	"github.com/omarcs/lia-woocommerce/internal/core/ports/driven"
)

// ==================== Catalog Reader ====================

// catalogReader implements driven.CatalogReader over the WordPress post tables.
type catalogReader struct {
	store *Store
}

var _ driven.CatalogReader = (*catalogReader)(nil)

// publishedProductsQuery flattens the product metas into one row per product.
// Products in the exclude-from-catalog visibility term are reported hidden.
const publishedProductsQuery = `
SELECT
    p.ID,
    sku.meta_value,
    p.post_title,
    COALESCE(p.post_content, ''),
    p.post_modified,
    COALESCE(price.meta_value, ''),
    COALESCE(qty.meta_value, ''),
    COALESCE(stock.meta_value, ''),
    COALESCE(img.meta_value, ''),
    CASE WHEN EXISTS (
        SELECT 1
        FROM {{prefix}}term_relationships tr
        JOIN {{prefix}}term_taxonomy tt ON tr.term_taxonomy_id = tt.term_taxonomy_id
        JOIN {{prefix}}terms t ON tt.term_id = t.term_id
        WHERE tr.object_id = p.ID
          AND tt.taxonomy = 'product_visibility'
          AND t.slug = 'exclude-from-catalog'
    ) THEN 1 ELSE 0 END
FROM {{prefix}}posts p
JOIN {{prefix}}postmeta sku ON sku.post_id = p.ID AND sku.meta_key = '_sku'
LEFT JOIN {{prefix}}postmeta price ON price.post_id = p.ID AND price.meta_key = '_price'
LEFT JOIN {{prefix}}postmeta qty ON qty.post_id = p.ID AND qty.meta_key = '_stock_quantity'
LEFT JOIN {{prefix}}postmeta stock ON stock.post_id = p.ID AND stock.meta_key = '_stock_status'
LEFT JOIN {{prefix}}postmeta img ON img.post_id = p.ID AND img.meta_key = '_product_image_url'
WHERE p.post_type = 'product'
  AND p.post_status = 'publish'
  AND sku.meta_value IS NOT NULL
  AND sku.meta_value <> ''
ORDER BY p.ID ASC`

// ListPublished returns every published product with a SKU.
func (c *catalogReader) ListPublished(ctx context.Context) ([]domain.CatalogItem, error) {
	rows, err := c.store.db.QueryContext(ctx, c.store.query(publishedProductsQuery))
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var items []domain.CatalogItem
	for rows.Next() {
		var (
			item     domain.CatalogItem
			qty      string
			stock    string
			hidden   int
			modified sql.NullTime
		)
		if err := rows.Scan(&item.ID, &item.SKU, &item.Title, &item.Description, &modified,
			&item.Price, &qty, &stock, &item.ImageURL, &hidden); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}

		item.SKU = strings.TrimSpace(item.SKU)
		item.StockQuantity = parseQuantity(qty)
		item.StockStatus = domain.StockStatus(stock)
		if item.StockStatus == "" {
			item.StockStatus = domain.StockOutOfStock
		}
		item.Visibility = domain.VisibilityVisible
		if hidden == 1 {
			item.Visibility = domain.VisibilityHidden
		}
		if modified.Valid {
			item.LastModified = modified.Time.UTC()
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// LastModified returns the modification time of a product, published or not.
func (c *catalogReader) LastModified(ctx context.Context, productID int64) (time.Time, error) {
	var modified sql.NullTime
	err := c.store.db.QueryRowContext(ctx,
		c.store.query("SELECT post_modified FROM {{prefix}}posts WHERE ID = ?"), productID,
	).Scan(&modified)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, domain.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("querying product %d: %w", productID, err)
	}
	return modified.Time.UTC(), nil
}

// parseQuantity accepts integer or decimal stock metas. Blank means zero.
func parseQuantity(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f)
	}
	return 0
}
