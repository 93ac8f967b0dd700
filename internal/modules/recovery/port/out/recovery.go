package out

import (
	"context"

	"studylog/internal/modules/recovery/domain"
)

type SnapshotStore interface {
	// Snapshot copies the live record store into pool and enforces the pool cap.
	Snapshot(ctx context.Context, pool domain.Pool, description string) (domain.SnapshotRef, error)
	// Latest returns the most recently modified snapshot; ok is false when the
	// pool is empty.
	Latest(ctx context.Context, pool domain.Pool) (ref domain.SnapshotRef, ok bool, err error)
	// List returns the pool oldest first.
	List(ctx context.Context, pool domain.Pool) ([]domain.SnapshotRef, error)
	Restore(ctx context.Context, ref domain.SnapshotRef, description string) error
	Remove(ctx context.Context, ref domain.SnapshotRef) error
	// Resolve turns an arbitrary snapshot file path into a ref.
	Resolve(ctx context.Context, path string) (domain.SnapshotRef, error)
}

// DayActivity answers whether the record store already holds log entries for
// a calendar day (DateLayout).
type DayActivity interface {
	HasEntriesOn(ctx context.Context, day string) (bool, error)
}

// Rebuilder replaces every log entry, goal and daily summary with the
// contents of r in one transaction.
type Rebuilder interface {
	Rebuild(ctx context.Context, r domain.Reconstruction) error
}
