package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"studylog/internal/modules/planner/domain"
	plannerout "studylog/internal/modules/planner/port/out"
	apperrors "studylog/internal/platform/errors"
	"studylog/internal/platform/recordstore"
)

type SQLiteSummaryStore struct {
	store *recordstore.Store
}

func NewSQLiteSummaryStore(store *recordstore.Store) plannerout.SummaryStore {
	return &SQLiteSummaryStore{store: store}
}

func (s *SQLiteSummaryStore) Upsert(ctx context.Context, summary domain.DailySummary) error {
	const stmt = `
INSERT INTO daily_summaries (date, summary)
VALUES (?, ?)
ON CONFLICT(date) DO UPDATE SET
  summary=excluded.summary;`
	if _, err := s.store.DB().ExecContext(ctx, stmt, summary.Date, nullString(summary.Summary)); err != nil {
		return fmt.Errorf("%w: upsert daily summary: %w", apperrors.ErrStorage, err)
	}
	return nil
}

func (s *SQLiteSummaryStore) Get(ctx context.Context, date string) (domain.DailySummary, bool, error) {
	var text sql.NullString
	err := s.store.DB().QueryRowContext(ctx, `SELECT summary FROM daily_summaries WHERE date = ?`, date).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DailySummary{}, false, nil
	}
	if err != nil {
		return domain.DailySummary{}, false, fmt.Errorf("%w: read daily summary: %w", apperrors.ErrStorage, err)
	}
	return domain.DailySummary{Date: date, Summary: stringPtr(text)}, true, nil
}
