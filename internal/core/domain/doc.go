// Package domain defines the core business entities for the catalog sync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - CatalogItem: A published product read from the shop database
//   - SyncRecord: Durable per-(product, sku, channel) sync state
//   - RemoteEntry: A product payload ready for the merchant catalog
//   - Outcome: The discriminated result of a single remote attempt
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
