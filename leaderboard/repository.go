package leaderboard

import (
	"context"
	"time"
)

// SnapshotRepository is the access contract for daily snapshots. Snapshots
// are append-only per (date, member): Upsert is the single write path and is
// idempotent, concurrent upserts for the same member and day serialize at the
// storage layer with last-write-wins per field.
type SnapshotRepository interface {
	// Get returns the snapshot for the member and date, or nil when none exists.
	Get(ctx context.Context, memberID int64, date time.Time) (*Snapshot, error)

	// ListForDate returns the snapshots for date with a positive score on the
	// platform, ordered by that score descending. Ties break by member id
	// ascending so results are deterministic. A nil memberIDs slice means no
	// roster restriction.
	ListForDate(ctx context.Context, date time.Time, memberIDs []int64, p Platform) ([]Snapshot, error)

	// Upsert merges the non-nil fields of update into the member's snapshot
	// for date, creating the row if absent.
	Upsert(ctx context.Context, memberID int64, date time.Time, update SnapshotUpdate) (*Snapshot, error)

	// EarliestPositive returns the chronologically first snapshot where the
	// member's score on the platform is positive, or nil when there is none.
	// Used as the evolution baseline when no 30-day-old snapshot exists.
	EarliestPositive(ctx context.Context, memberID int64, p Platform) (*Snapshot, error)
}
