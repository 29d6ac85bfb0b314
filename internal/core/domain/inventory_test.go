package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvertStoreStock(t *testing.T) {
	inv := InvertStoreStock(map[string]map[string]int{
		"STORE-B": {"SKU-1": 3, "SKU-2": 0},
		"STORE-A": {"SKU-1": 0},
	})

	assert.Equal(t, map[string]int{"STORE-A": 0, "STORE-B": 3}, inv["SKU-1"])
	assert.Equal(t, map[string]int{"STORE-B": 0}, inv["SKU-2"])
}

func TestLocalInventory_ResolveStore(t *testing.T) {
	inv := LocalInventory{
		"SKU-1": {"STORE-B": 3, "STORE-A": 0, "STORE-C": 9},
		"SKU-2": {"STORE-Z": 0, "STORE-Y": 0},
	}

	store, qty := inv.ResolveStore("SKU-1", "DEFAULT", 1)
	assert.Equal(t, "STORE-B", store)
	assert.Equal(t, 3, qty)

	store, qty = inv.ResolveStore("SKU-2", "DEFAULT", 1)
	assert.Equal(t, "STORE-Y", store)
	assert.Equal(t, 0, qty)

	store, qty = inv.ResolveStore("SKU-9", "DEFAULT", 4)
	assert.Equal(t, "DEFAULT", store)
	assert.Equal(t, 4, qty)
}

func TestLocalInventory_NilMap(t *testing.T) {
	var inv LocalInventory
	store, qty := inv.ResolveStore("SKU", "DEFAULT", 2)
	assert.Equal(t, "DEFAULT", store)
	assert.Equal(t, 2, qty)
}
