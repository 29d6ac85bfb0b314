package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
	"github.com/omarcs/lia-woocommerce/internal/core/ports/driven"
)

// ==================== Sync Record Store ====================

// syncRecordStore implements driven.SyncRecordStore.
type syncRecordStore struct {
	store *Store
}

var _ driven.SyncRecordStore = (*syncRecordStore)(nil)

const recordColumns = `t.product_id, t.sku, t.channel, t.last_sent_at, t.last_modified_at,
    t.sync_status, t.remote_item_id, t.error_count, t.last_error, t.updated_at`

const recordOrder = ` ORDER BY t.product_id, t.sku, t.channel`

// Get retrieves the record for a key.
func (s *syncRecordStore) Get(ctx context.Context, key domain.SyncKey) (*domain.SyncRecord, error) {
	row := s.store.db.QueryRowContext(ctx, s.store.query(
		"SELECT "+recordColumns+" FROM {{prefix}}product_sync_tracking t WHERE t.product_id = ? AND t.sku = ? AND t.channel = ?"),
		key.ProductID, key.SKU, string(key.Channel))

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting record %s: %w", key, err)
	}
	return rec, nil
}

// Save updates the record for its key, inserting it when absent.
func (s *syncRecordStore) Save(ctx context.Context, rec *domain.SyncRecord) error {
	if rec == nil {
		return domain.ErrInvalidInput
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC().Truncate(time.Second)
	}
	args := []any{
		nullTime(rec.LastSentAt), nullTime(rec.LastModifiedAt), string(rec.Status),
		nullString(rec.RemoteItemID), rec.ErrorCount, nullString(rec.LastError), updatedAt.UTC(),
		rec.Key.ProductID, rec.Key.SKU, string(rec.Key.Channel),
	}

	res, err := tx.ExecContext(ctx, s.store.query(`
		UPDATE {{prefix}}product_sync_tracking
		SET last_sent_at = ?, last_modified_at = ?, sync_status = ?, remote_item_id = ?,
		    error_count = ?, last_error = ?, updated_at = ?
		WHERE product_id = ? AND sku = ? AND channel = ?`), args...)
	if err != nil {
		return fmt.Errorf("updating record %s: %w", rec.Key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return tx.Commit()
	}

	// MySQL reports zero affected rows when nothing changed, so check presence.
	var exists int
	err = tx.QueryRowContext(ctx, s.store.query(
		"SELECT COUNT(*) FROM {{prefix}}product_sync_tracking WHERE product_id = ? AND sku = ? AND channel = ?"),
		rec.Key.ProductID, rec.Key.SKU, string(rec.Key.Channel)).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking record %s: %w", rec.Key, err)
	}
	if exists == 0 {
		_, err = tx.ExecContext(ctx, s.store.query(`
			INSERT INTO {{prefix}}product_sync_tracking
			    (last_sent_at, last_modified_at, sync_status, remote_item_id,
			     error_count, last_error, updated_at, product_id, sku, channel)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`), args...)
		if err != nil {
			return fmt.Errorf("inserting record %s: %w", rec.Key, err)
		}
	}
	return tx.Commit()
}

// List returns every tracked record.
func (s *syncRecordStore) List(ctx context.Context) ([]domain.SyncRecord, error) {
	return s.list(ctx, "SELECT "+recordColumns+" FROM {{prefix}}product_sync_tracking t"+recordOrder)
}

// ListOrphaned returns non-deleted records whose product row is gone.
func (s *syncRecordStore) ListOrphaned(ctx context.Context) ([]domain.SyncRecord, error) {
	return s.list(ctx, `SELECT `+recordColumns+`
		FROM {{prefix}}product_sync_tracking t
		LEFT JOIN {{prefix}}posts p ON t.product_id = p.ID
		WHERE p.ID IS NULL AND t.sync_status <> 'deleted'`+recordOrder)
}

// MarkDeleted marks every record of a product and SKU as deleted.
func (s *syncRecordStore) MarkDeleted(ctx context.Context, productID int64, sku string, at time.Time) (int, error) {
	res, err := s.store.db.ExecContext(ctx, s.store.query(`
		UPDATE {{prefix}}product_sync_tracking
		SET sync_status = ?, updated_at = ?
		WHERE product_id = ? AND sku = ?`),
		string(domain.StatusDeleted), at.UTC(), productID, sku)
	if err != nil {
		return 0, fmt.Errorf("marking %d/%s deleted: %w", productID, sku, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("marking %d/%s deleted: %w", productID, sku, err)
	}
	return int(n), nil
}

// CountByStatus groups records by status and channel.
func (s *syncRecordStore) CountByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	rows, err := s.store.db.QueryContext(ctx, s.store.query(`
		SELECT sync_status, channel, COUNT(*)
		FROM {{prefix}}product_sync_tracking
		GROUP BY sync_status, channel
		ORDER BY sync_status, channel`))
	if err != nil {
		return nil, fmt.Errorf("counting records: %w", err)
	}
	defer rows.Close()

	var out []domain.StatusCount
	for rows.Next() {
		var status, channel string
		var n int
		if err := rows.Scan(&status, &channel, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		out = append(out, domain.StatusCount{
			Status:  domain.SyncStatus(status),
			Channel: domain.Channel(channel),
			Count:   n,
		})
	}
	return out, rows.Err()
}

func (s *syncRecordStore) list(ctx context.Context, q string) ([]domain.SyncRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, s.store.query(q))
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var out []domain.SyncRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*domain.SyncRecord, error) {
	var (
		rec                domain.SyncRecord
		channel, status    string
		sentAt, modifiedAt sql.NullTime
		remoteID, lastErr  sql.NullString
		updatedAt          sql.NullTime
	)
	err := row.Scan(&rec.Key.ProductID, &rec.Key.SKU, &channel, &sentAt, &modifiedAt,
		&status, &remoteID, &rec.ErrorCount, &lastErr, &updatedAt)
	if err != nil {
		return nil, err
	}

	rec.Key.Channel = domain.Channel(channel)
	rec.Status = domain.SyncStatus(status)
	rec.RemoteItemID = remoteID.String
	rec.LastError = lastErr.String
	rec.LastSentAt = timePtr(sentAt)
	rec.LastModifiedAt = timePtr(modifiedAt)
	if updatedAt.Valid {
		rec.UpdatedAt = updatedAt.Time.UTC()
	}
	return &rec, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
