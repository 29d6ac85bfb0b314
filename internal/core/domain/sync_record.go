package domain

import (
	"fmt"
	"time"
)

// MaxErrorLength bounds stored error messages, in runes.
const MaxErrorLength = 500

// SyncStatus is the lifecycle state of a tracked item.
type SyncStatus string

// Sync statuses.
const (
	// StatusPending marks an item seen locally but never accepted remotely.
	StatusPending SyncStatus = "pending"

	// StatusSynced marks an item accepted by the remote catalog.
	StatusSynced SyncStatus = "synced"

	// StatusFailed marks an item whose last submission was rejected or errored.
	StatusFailed SyncStatus = "failed"

	// StatusDeleted marks an item whose source product disappeared and was removed remotely.
	StatusDeleted SyncStatus = "deleted"
)

// IsValid returns true if the status is recognised.
func (s SyncStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusSynced, StatusFailed, StatusDeleted:
		return true
	default:
		return false
	}
}

// SyncKey identifies a tracking record. At most one record exists per key.
type SyncKey struct {
	ProductID int64
	SKU       string
	Channel   Channel
}

func (k SyncKey) String() string {
	return fmt.Sprintf("%d/%s/%s", k.ProductID, k.SKU, k.Channel)
}

// SyncRecord is the durable sync state of one item on one channel.
type SyncRecord struct {
	Key SyncKey

	// LastSentAt is when the item was last accepted remotely. Nil if never.
	LastSentAt *time.Time

	// LastModifiedAt is the source modification time observed at the last attempt.
	LastModifiedAt *time.Time

	Status       SyncStatus
	RemoteItemID string

	// ErrorCount counts consecutive failures and resets on success.
	ErrorCount int
	LastError  string

	UpdatedAt time.Time
}

// NewSyncRecord returns an untracked record for a key.
func NewSyncRecord(key SyncKey) *SyncRecord {
	return &SyncRecord{Key: key, Status: StatusPending}
}

// Succeed applies a remote acceptance.
func (r *SyncRecord) Succeed(now time.Time, modifiedAt *time.Time, remoteID string) {
	sent := now
	r.LastSentAt = &sent
	if modifiedAt != nil {
		r.LastModifiedAt = modifiedAt
	}
	r.Status = StatusSynced
	r.ErrorCount = 0
	r.LastError = ""
	if remoteID != "" {
		r.RemoteItemID = remoteID
	}
	r.UpdatedAt = now
}

// Fail applies a remote rejection or transport failure.
// LastSentAt is left untouched.
func (r *SyncRecord) Fail(now time.Time, modifiedAt *time.Time, message string) {
	if modifiedAt != nil {
		r.LastModifiedAt = modifiedAt
	}
	r.Status = StatusFailed
	r.ErrorCount++
	r.LastError = Truncate(message, MaxErrorLength)
	r.UpdatedAt = now
}

// Reject applies a local validation failure. The item was never sent,
// so the record stays pending until the source changes again.
func (r *SyncRecord) Reject(now time.Time, modifiedAt *time.Time, reason string) {
	if modifiedAt != nil {
		r.LastModifiedAt = modifiedAt
	}
	r.Status = StatusPending
	r.LastError = Truncate(reason, MaxErrorLength)
	r.UpdatedAt = now
}

// MarkDeleted records remote removal. Applying it twice changes nothing but UpdatedAt.
func (r *SyncRecord) MarkDeleted(now time.Time) {
	r.Status = StatusDeleted
	r.UpdatedAt = now
}

// Retryable reports whether a failed record is still under the retry ceiling.
func (r *SyncRecord) Retryable(ceiling int) bool {
	return r.Status == StatusFailed && r.ErrorCount < ceiling
}

// ChangedSince reports whether a source modification time is newer than
// what the record last observed. Comparison is at second precision, which
// is what the shop database stores.
func (r *SyncRecord) ChangedSince(modified time.Time) bool {
	baseline := r.LastModifiedAt
	if baseline == nil {
		baseline = r.LastSentAt
	}
	if baseline == nil {
		return true
	}
	return modified.Truncate(time.Second).After(baseline.Truncate(time.Second))
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
