// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - CatalogReader: Reads published products from the shop database
//   - SyncRecordStore: Per-item sync state persistence
//   - RemoteCatalog: Batch insert and delete against the merchant catalog
//   - WatermarkStore: Start time of the last completed run
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - InventorySource: Per-store stock for local items. Without it every
//     local item is assigned to the default store.
//   - SchemaManager: Creates and checks the tracking table.
//   - SettingsLoader: Resolves run configuration for the command line.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
