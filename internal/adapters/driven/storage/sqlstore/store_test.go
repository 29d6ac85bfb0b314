package sqlstore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
)

// wooSchema is the subset of the WooCommerce schema the catalog reader needs.
var wooSchema = []string{
	`CREATE TABLE wp_posts (
		ID INTEGER PRIMARY KEY,
		post_title TEXT NOT NULL DEFAULT '',
		post_content TEXT,
		post_status TEXT NOT NULL DEFAULT 'publish',
		post_type TEXT NOT NULL DEFAULT 'product',
		post_modified DATETIME NOT NULL
	)`,
	`CREATE TABLE wp_postmeta (
		meta_id INTEGER PRIMARY KEY AUTOINCREMENT,
		post_id INTEGER NOT NULL,
		meta_key TEXT,
		meta_value TEXT
	)`,
	`CREATE TABLE wp_terms (term_id INTEGER PRIMARY KEY, name TEXT, slug TEXT)`,
	`CREATE TABLE wp_term_taxonomy (term_taxonomy_id INTEGER PRIMARY KEY, term_id INTEGER, taxonomy TEXT)`,
	`CREATE TABLE wp_term_relationships (object_id INTEGER, term_taxonomy_id INTEGER)`,
	`INSERT INTO wp_terms (term_id, name, slug) VALUES (1, 'exclude-from-catalog', 'exclude-from-catalog')`,
	`INSERT INTO wp_term_taxonomy (term_taxonomy_id, term_id, taxonomy) VALUES (10, 1, 'product_visibility')`,
}

// setupTestStore creates a temporary SQLite store with the WooCommerce
// tables and the tracking table.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "lia-sync-test-*")
	require.NoError(t, err)

	store, err := Open(context.Background(), domain.DatabaseSettings{
		Driver:      domain.DriverSQLite,
		Name:        filepath.Join(tempDir, "shop.db"),
		TablePrefix: "wp_",
	})
	require.NoError(t, err)

	for _, stmt := range wooSchema {
		_, err := store.db.Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, store.SchemaManager().Migrate(context.Background()))

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}
	return store, cleanup
}

type fixtureProduct struct {
	id       int64
	title    string
	status   string
	sku      string
	price    string
	qty      string
	stock    string
	image    string
	hidden   bool
	modified string
}

func insertProduct(t *testing.T, db *sql.DB, p fixtureProduct) {
	t.Helper()
	if p.status == "" {
		p.status = "publish"
	}
	if p.modified == "" {
		p.modified = "2026-06-01 08:00:00"
	}
	_, err := db.Exec(`INSERT INTO wp_posts (ID, post_title, post_content, post_status, post_type, post_modified)
		VALUES (?, ?, ?, ?, 'product', ?)`, p.id, p.title, "Descripción "+p.title, p.status, p.modified)
	require.NoError(t, err)

	metas := map[string]string{
		"_sku": p.sku, "_price": p.price, "_stock_quantity": p.qty,
		"_stock_status": p.stock, "_product_image_url": p.image,
	}
	for key, value := range metas {
		if value == "" {
			continue
		}
		_, err := db.Exec(`INSERT INTO wp_postmeta (post_id, meta_key, meta_value) VALUES (?, ?, ?)`, p.id, key, value)
		require.NoError(t, err)
	}
	if p.hidden {
		_, err := db.Exec(`INSERT INTO wp_term_relationships (object_id, term_taxonomy_id) VALUES (?, 10)`, p.id)
		require.NoError(t, err)
	}
}

// ==================== Store Creation Tests ====================

func TestOpen_InvalidPrefix(t *testing.T) {
	_, err := Open(context.Background(), domain.DatabaseSettings{
		Driver:      domain.DriverSQLite,
		Name:        filepath.Join(t.TempDir(), "x.db"),
		TablePrefix: "wp_;--",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), domain.DatabaseSettings{Driver: "oracle", TablePrefix: "wp_"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOpen_MalformedDSN(t *testing.T) {
	_, err := Open(context.Background(), domain.DatabaseSettings{
		Driver:      domain.DriverMySQL,
		DSN:         "not a dsn",
		TablePrefix: "wp_",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NotErrorIs(t, err, domain.ErrDatabaseUnavailable)
}

func TestMigrate_Idempotent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	require.NoError(t, store.SchemaManager().Migrate(context.Background()))

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM wp_lia_schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestCheck(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	missing, err := store.SchemaManager().Check(context.Background())
	require.NoError(t, err)
	assert.Empty(t, missing)

	_, err = store.db.Exec("DROP TABLE wp_terms")
	require.NoError(t, err)
	missing, err = store.SchemaManager().Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"wp_terms"}, missing)
}

func TestCheck_BeforeMigrate(t *testing.T) {
	store, err := Open(context.Background(), domain.DatabaseSettings{
		Driver:      domain.DriverSQLite,
		Name:        filepath.Join(t.TempDir(), "empty.db"),
		TablePrefix: "shop_",
	})
	require.NoError(t, err)
	defer store.Close()

	missing, err := store.SchemaManager().Check(context.Background())
	require.NoError(t, err)
	assert.Contains(t, missing, "shop_posts")
	assert.Contains(t, missing, "shop_product_sync_tracking")
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements("CREATE TABLE a (x INT);\n\nCREATE INDEX i ON a (x);\n")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE INDEX i ON a (x)"}, stmts)
}

// ==================== Catalog Reader Tests ====================

func TestCatalogReader_ListPublished(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	insertProduct(t, store.db, fixtureProduct{id: 2, title: "Silla", sku: "SKU-2", price: "350", qty: "4",
		stock: "instock", image: "https://shop.example/silla.jpg"})
	insertProduct(t, store.db, fixtureProduct{id: 1, title: "Mesa", sku: "SKU-1", price: "1200.5", qty: "2.0",
		stock: "outofstock", hidden: true})
	insertProduct(t, store.db, fixtureProduct{id: 3, title: "Borrador", status: "draft", sku: "SKU-3", price: "10"})
	insertProduct(t, store.db, fixtureProduct{id: 4, title: "Sin SKU", price: "10"})

	items, err := store.CatalogReader().ListPublished(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	mesa := items[0]
	assert.Equal(t, int64(1), mesa.ID)
	assert.Equal(t, "SKU-1", mesa.SKU)
	assert.Equal(t, "1200.5", mesa.Price)
	assert.Equal(t, 2, mesa.StockQuantity)
	assert.Equal(t, domain.StockOutOfStock, mesa.StockStatus)
	assert.Equal(t, domain.VisibilityHidden, mesa.Visibility)
	assert.Empty(t, mesa.ImageURL)
	assert.Equal(t, time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC), mesa.LastModified)

	silla := items[1]
	assert.Equal(t, "Silla", silla.Title)
	assert.Equal(t, "Descripción Silla", silla.Description)
	assert.Equal(t, domain.VisibilityVisible, silla.Visibility)
	assert.Equal(t, domain.StockInStock, silla.StockStatus)
	assert.Equal(t, "https://shop.example/silla.jpg", silla.ImageURL)
}

func TestCatalogReader_LastModified(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	insertProduct(t, store.db, fixtureProduct{id: 7, title: "X", sku: "X", modified: "2026-07-04 10:30:00"})

	got, err := store.CatalogReader().LastModified(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 7, 4, 10, 30, 0, 0, time.UTC), got)

	_, err = store.CatalogReader().LastModified(context.Background(), 8)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestParseQuantity(t *testing.T) {
	assert.Equal(t, 0, parseQuantity(""))
	assert.Equal(t, 5, parseQuantity("5"))
	assert.Equal(t, 3, parseQuantity("3.0"))
	assert.Equal(t, 0, parseQuantity("n/a"))
}

// ==================== Sync Record Store Tests ====================

func TestSyncRecordStore_SaveInsertThenUpdate(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	records := store.SyncRecordStore()

	now := time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC)
	modified := now.Add(-time.Hour)
	key := domain.SyncKey{ProductID: 1, SKU: "SKU-1", Channel: domain.ChannelOnline}

	rec := domain.NewSyncRecord(key)
	rec.Fail(now, &modified, "boom")
	require.NoError(t, records.Save(ctx, rec))

	got, err := records.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.Equal(t, 1, got.ErrorCount)
	assert.Equal(t, "boom", got.LastError)
	assert.Nil(t, got.LastSentAt)
	require.NotNil(t, got.LastModifiedAt)
	assert.Equal(t, modified, *got.LastModifiedAt)

	got.Succeed(now.Add(time.Minute), &modified, "online:es:MX:SKU-1")
	require.NoError(t, records.Save(ctx, got))

	again, err := records.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSynced, again.Status)
	assert.Zero(t, again.ErrorCount)
	assert.Empty(t, again.LastError)
	assert.Equal(t, "online:es:MX:SKU-1", again.RemoteItemID)
	assert.Equal(t, now.Add(time.Minute), *again.LastSentAt)

	all, err := records.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "one record per key")
}

func TestSyncRecordStore_SaveUnchangedRecord(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	records := store.SyncRecordStore()

	rec := domain.NewSyncRecord(domain.SyncKey{ProductID: 1, SKU: "A", Channel: domain.ChannelLocal})
	rec.UpdatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, records.Save(ctx, rec))
	require.NoError(t, records.Save(ctx, rec))

	all, err := records.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSyncRecordStore_GetNotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.SyncRecordStore().Get(context.Background(), domain.SyncKey{ProductID: 9, SKU: "Z", Channel: domain.ChannelOnline})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncRecordStore_ListOrphanedAndMarkDeleted(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	records := store.SyncRecordStore()
	now := time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC)

	insertProduct(t, store.db, fixtureProduct{id: 1, title: "Live", sku: "LIVE", price: "1"})
	insertProduct(t, store.db, fixtureProduct{id: 3, title: "Draft", status: "draft", sku: "DRAFT", price: "1"})
	for _, key := range []domain.SyncKey{
		{ProductID: 1, SKU: "LIVE", Channel: domain.ChannelOnline},
		{ProductID: 2, SKU: "GONE", Channel: domain.ChannelOnline},
		{ProductID: 2, SKU: "GONE", Channel: domain.ChannelLocal},
		{ProductID: 3, SKU: "DRAFT", Channel: domain.ChannelOnline},
	} {
		rec := domain.NewSyncRecord(key)
		rec.Succeed(now, &now, "")
		require.NoError(t, records.Save(ctx, rec))
	}

	orphans, err := records.ListOrphaned(ctx)
	require.NoError(t, err)
	require.Len(t, orphans, 2)
	assert.Equal(t, domain.ChannelLocal, orphans[0].Key.Channel)
	assert.Equal(t, domain.ChannelOnline, orphans[1].Key.Channel)

	n, err := records.MarkDeleted(ctx, 2, "GONE", now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	orphans, err = records.ListOrphaned(ctx)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestSyncRecordStore_CountByStatus(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	records := store.SyncRecordStore()
	now := time.Now().UTC().Truncate(time.Second)

	for i, status := range []domain.SyncStatus{domain.StatusSynced, domain.StatusSynced, domain.StatusFailed} {
		rec := domain.NewSyncRecord(domain.SyncKey{ProductID: int64(i + 1), SKU: "S", Channel: domain.ChannelOnline})
		rec.Status = status
		rec.UpdatedAt = now
		require.NoError(t, records.Save(ctx, rec))
	}

	counts, err := records.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.StatusCount{
		{Status: domain.StatusFailed, Channel: domain.ChannelOnline, Count: 1},
		{Status: domain.StatusSynced, Channel: domain.ChannelOnline, Count: 2},
	}, counts)
}
