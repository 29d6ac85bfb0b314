package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
	"github.com/omarcs/lia-woocommerce/internal/core/ports/driven"
)

// Ensure Catalog implements the interface.
var _ driven.CatalogReader = (*Catalog)(nil)

// Catalog is an in-memory implementation of driven.CatalogReader.
// Products can exist without being published, mirroring draft posts.
type Catalog struct {
	mu        sync.RWMutex
	items     map[int64]domain.CatalogItem
	published map[int64]bool
}

// NewCatalog creates a catalog holding the given published items.
func NewCatalog(items ...domain.CatalogItem) *Catalog {
	c := &Catalog{
		items:     make(map[int64]domain.CatalogItem),
		published: make(map[int64]bool),
	}
	for _, item := range items {
		c.Put(item)
	}
	return c
}

// Put adds or replaces a published item.
func (c *Catalog) Put(item domain.CatalogItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[item.ID] = item
	c.published[item.ID] = true
}

// Unpublish keeps the product but hides it from ListPublished.
func (c *Catalog) Unpublish(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published[id] = false
}

// Remove deletes the product entirely.
func (c *Catalog) Remove(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	delete(c.published, id)
}

// Exists reports whether a product row exists, published or not.
func (c *Catalog) Exists(id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.items[id]
	return ok
}

// ListPublished returns published items with a SKU, ordered by ID.
func (c *Catalog) ListPublished(_ context.Context) ([]domain.CatalogItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.CatalogItem, 0, len(c.items))
	for id, item := range c.items {
		if c.published[id] && item.HasSKU() {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// LastModified returns the modification time of a product.
func (c *Catalog) LastModified(_ context.Context, productID int64) (time.Time, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[productID]
	if !ok {
		return time.Time{}, domain.ErrNotFound
	}
	return item.LastModified, nil
}
