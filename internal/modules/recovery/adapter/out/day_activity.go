package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	recoveryout "studylog/internal/modules/recovery/port/out"
	apperrors "studylog/internal/platform/errors"
	"studylog/internal/platform/recordstore"
)

type SQLiteDayActivity struct {
	store *recordstore.Store
}

func NewSQLiteDayActivity(store *recordstore.Store) recoveryout.DayActivity {
	return &SQLiteDayActivity{store: store}
}

func (a *SQLiteDayActivity) HasEntriesOn(ctx context.Context, day string) (bool, error) {
	var one int
	err := a.store.DB().QueryRowContext(ctx, `SELECT 1 FROM study_logs WHERE DATE(start_time) = ? LIMIT 1`, day).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: query day activity: %w", apperrors.ErrStorage, err)
	}
	return true, nil
}
