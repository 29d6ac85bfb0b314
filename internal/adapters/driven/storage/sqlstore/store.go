package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/omarcs/lia-woocommerce/internal/adapters/driven/storage/sqlstore/migrations"
	"github.com/omarcs/lia-woocommerce/internal/core/domain"
	"github.com/omarcs/lia-woocommerce/internal/core/ports/driven"
)

// sourceTables are the WooCommerce tables the catalog reader joins.
var sourceTables = []string{"posts", "postmeta", "terms", "term_taxonomy", "term_relationships"}

// trackingTable is the unprefixed name of the sync tracking table.
const trackingTable = "product_sync_tracking"

// Store is a unified database/sql storage that provides access to
// the catalog and tracking interfaces through wrapper types.
type Store struct {
	db      *sql.DB
	dialect dialect
	prefix  string
}

// Open connects to the shop database and verifies the connection.
// It does not run migrations.
func Open(ctx context.Context, s domain.DatabaseSettings) (*Store, error) {
	if !domain.ValidTablePrefix(s.TablePrefix) {
		return nil, fmt.Errorf("%w: table prefix %q", domain.ErrInvalidInput, s.TablePrefix)
	}
	d, err := dialectFor(s.Driver)
	if err != nil {
		return nil, err
	}
	dsn, err := d.dsn(s)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", domain.ErrInvalidInput, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrDatabaseUnavailable, err)
	}
	if d.driver == domain.DriverSQLite {
		// SQLite allows one writer at a time.
		db.SetMaxOpenConns(1)
	}

	return &Store{db: db, dialect: d, prefix: s.TablePrefix}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the dialect in use.
func (s *Store) Driver() domain.DatabaseDriver {
	return s.dialect.driver
}

// CatalogReader returns a CatalogReader interface backed by this store.
func (s *Store) CatalogReader() driven.CatalogReader {
	return &catalogReader{store: s}
}

// SyncRecordStore returns a SyncRecordStore interface backed by this store.
func (s *Store) SyncRecordStore() driven.SyncRecordStore {
	return &syncRecordStore{store: s}
}

// SchemaManager returns a SchemaManager interface backed by this store.
func (s *Store) SchemaManager() driven.SchemaManager {
	return &schemaManager{store: s}
}

// table returns a prefixed table name. The prefix was validated in Open.
func (s *Store) table(name string) string {
	return s.prefix + name
}

// query expands {{prefix}} and rebinds placeholders.
func (s *Store) query(q string) string {
	return s.dialect.rebind(strings.ReplaceAll(q, "{{prefix}}", s.prefix))
}

// ==================== Schema Manager ====================

// schemaManager implements driven.SchemaManager.
type schemaManager struct {
	store *Store
}

var _ driven.SchemaManager = (*schemaManager)(nil)

// Migrate applies pending tracking table migrations for the dialect.
func (m *schemaManager) Migrate(ctx context.Context) error {
	sub, err := fs.Sub(migrations.FS, string(m.store.dialect.driver))
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}
	return m.store.migrate(ctx, sub)
}

// Check returns the required tables that do not exist.
func (m *schemaManager) Check(ctx context.Context) ([]string, error) {
	required := append(append([]string(nil), sourceTables...), trackingTable)
	var missing []string
	for _, name := range required {
		table := m.store.table(name)
		var n int
		err := m.store.db.QueryRowContext(ctx, m.store.dialect.rebind(m.store.dialect.tableExists), table).Scan(&n)
		if err != nil {
			return nil, fmt.Errorf("checking table %s: %w", table, err)
		}
		if n == 0 {
			missing = append(missing, table)
		}
	}
	return missing, nil
}

// migrate runs all pending migrations in fsys.
func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	versions := s.table("lia_schema_migrations")

	// Ensure the migrations table exists
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+versions+` (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating %s table: %w", versions, err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM "+versions)
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		// Drivers differ on multi-statement support, so run one at a time.
		for _, stmt := range splitStatements(strings.ReplaceAll(string(content), "{{prefix}}", s.prefix)) {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("executing migration %s: %w", name, err)
			}
		}
		if _, err := s.db.ExecContext(ctx, s.dialect.rebind("INSERT INTO "+versions+" (version) VALUES (?)"), version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// splitStatements splits a migration on statement-terminating semicolons.
func splitStatements(content string) []string {
	var out []string
	for _, part := range strings.Split(content, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
