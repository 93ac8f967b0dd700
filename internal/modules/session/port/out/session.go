package out

import (
	"context"

	"studylog/internal/modules/session/domain"
)

// LogStore persists study log entries. Lookups of a missing id return an
// error wrapping apperrors.ErrNotFound.
type LogStore interface {
	// Apply commits all changes in one transaction and returns the ids of
	// the inserted rows in order.
	Apply(ctx context.Context, changes domain.Changes) ([]int64, error)
	FindByID(ctx context.Context, id int64) (domain.Entry, error)
	// LatestOpen is the newest entry without an end time.
	LatestOpen(ctx context.Context) (domain.Entry, bool, error)
	LatestStart(ctx context.Context) (domain.Entry, bool, error)
	// Latest returns up to n entries, highest id first.
	Latest(ctx context.Context, n int) ([]domain.Entry, error)
	// LastBetween is the newest entry with fromID <= id < beforeID.
	LastBetween(ctx context.Context, fromID, beforeID int64) (domain.Entry, bool, error)
	ListByDate(ctx context.Context, date string) ([]domain.Entry, error)
	ListClosed(ctx context.Context) ([]domain.Entry, error)
}
