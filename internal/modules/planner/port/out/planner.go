package out

import (
	"context"

	"studylog/internal/modules/planner/domain"
)

// GoalStore lookups and deletes of a missing id return an error wrapping
// apperrors.ErrNotFound.
type GoalStore interface {
	Insert(ctx context.Context, goal domain.Goal) error
	Update(ctx context.Context, goal domain.Goal) error
	// UpsertAll inserts or replaces goals by id in one transaction.
	UpsertAll(ctx context.Context, goals []domain.Goal) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (domain.Goal, error)
	ListByDate(ctx context.Context, date string) ([]domain.Goal, error)
}

type SummaryStore interface {
	Upsert(ctx context.Context, summary domain.DailySummary) error
	Get(ctx context.Context, date string) (domain.DailySummary, bool, error)
}
