// Package sqlstore provides a database/sql implementation of the catalog
// and tracking ports against a WooCommerce database.
//
// One Store serves every port through a single connection pool:
//
//   - CatalogReader: Published products from the WordPress post tables
//   - SyncRecordStore: The {prefix}product_sync_tracking table
//   - SchemaManager: Tracking table migrations and source table checks
//
// # Dialects
//
// Three drivers are supported: MySQL (github.com/go-sql-driver/mysql) for
// production WooCommerce installs, PostgreSQL (github.com/jackc/pgx/v5) and
// SQLite (modernc.org/sqlite, pure Go, used for local runs and tests).
// Queries are written with ? placeholders and rebound per dialect.
//
// # Schema
//
// The tracking table is created by versioned migrations embedded from the
// migrations/ directory, one subdirectory per dialect. The WordPress table
// prefix is spliced into identifiers only after validation.
package sqlstore
