package domain

import "sort"

// LocalInventory maps sku -> store code -> quantity.
type LocalInventory map[string]map[string]int

// InvertStoreStock turns a store -> sku -> quantity document into a LocalInventory.
func InvertStoreStock(byStore map[string]map[string]int) LocalInventory {
	inv := make(LocalInventory)
	for store, skus := range byStore {
		for sku, qty := range skus {
			if inv[sku] == nil {
				inv[sku] = make(map[string]int)
			}
			inv[sku][store] = qty
		}
	}
	return inv
}

// ResolveStore picks the store an item is stocked in. The first store in
// lexical order holding stock wins, then the first listed store, then the
// default store with the item's own quantity.
func (inv LocalInventory) ResolveStore(sku, defaultStore string, fallbackQty int) (string, int) {
	stores := inv[sku]
	if len(stores) == 0 {
		return defaultStore, fallbackQty
	}

	codes := make([]string, 0, len(stores))
	for code := range stores {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		if stores[code] > 0 {
			return code, stores[code]
		}
	}
	return codes[0], stores[codes[0]]
}
