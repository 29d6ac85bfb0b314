package domain

import "time"

// SyncMode selects which items a run considers.
type SyncMode string

// Sync modes.
const (
	// ModeIncremental syncs new, modified and retryable failed items.
	ModeIncremental SyncMode = "incremental"

	// ModeFull syncs every published item regardless of tracking.
	ModeFull SyncMode = "full"
)

// Watermark marks the start time of the last completed run.
type Watermark struct {
	LastSync  time.Time
	UpdatedAt time.Time
}

// RunOptions are the per-invocation switches of a run.
type RunOptions struct {
	// Full forces a full sync even when a watermark exists.
	Full bool

	// SkipDeletion disables the deletion pass.
	SkipDeletion bool

	// BatchSize overrides the configured batch size when positive.
	BatchSize int
}

// Detection is the result of change detection, partitioned by channel.
type Detection struct {
	Mode   SyncMode
	Online []CatalogItem
	Local  []CatalogItem

	// New, Modified and Retried count incremental selections.
	New      int
	Modified int
	Retried  int

	// NeedsIntervention counts failed items at or over the retry ceiling.
	NeedsIntervention int
}

// Items returns the items detected for a channel.
func (d Detection) Items(channel Channel) []CatalogItem {
	if channel == ChannelLocal {
		return d.Local
	}
	return d.Online
}

// Total returns the number of detected items.
func (d Detection) Total() int {
	return len(d.Online) + len(d.Local)
}

// StatsSnapshot is a point-in-time copy of the run counters.
type StatsSnapshot struct {
	Processed int
	Valid     int
	Invalid   int
	Errors    int

	ValidPrice int
	RealImage  int
	InStock    int

	Rejected map[RejectReason]int
	Sent     map[Channel]int
	Deleted  int
}

// RunReport summarises a completed run.
type RunReport struct {
	RunID     string
	Mode      SyncMode
	StartedAt time.Time
	Duration  time.Duration
	Detection Detection
	Stats     StatsSnapshot
}

// StatusCount is one row of the tracking summary.
type StatusCount struct {
	Status  SyncStatus
	Channel Channel
	Count   int
}
