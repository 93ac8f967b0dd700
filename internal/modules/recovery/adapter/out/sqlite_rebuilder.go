package out

import (
	"context"
	"database/sql"
	"fmt"

	"studylog/internal/modules/recovery/domain"
	recoveryout "studylog/internal/modules/recovery/port/out"
	apperrors "studylog/internal/platform/errors"
	"studylog/internal/platform/recordstore"
)

type SQLiteRebuilder struct {
	store *recordstore.Store
}

func NewSQLiteRebuilder(store *recordstore.Store) recoveryout.Rebuilder {
	return &SQLiteRebuilder{store: store}
}

func (r *SQLiteRebuilder) Rebuild(ctx context.Context, plan domain.Reconstruction) error {
	err := r.store.WithTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"study_logs", "daily_summaries", "goals"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		if plan.DailySummary != nil && *plan.DailySummary != "" {
			if _, err := tx.ExecContext(ctx, `INSERT INTO daily_summaries (date, summary) VALUES (?, ?)`, plan.Date, *plan.DailySummary); err != nil {
				return fmt.Errorf("insert daily summary: %w", err)
			}
		}
		for _, session := range plan.Sessions {
			if err := insertSession(ctx, tx, session); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: rebuild: %w", apperrors.ErrStorage, err)
	}
	return nil
}

// insertSession writes the events in order; the session summary lands on the
// first START.
func insertSession(ctx context.Context, tx *sql.Tx, session domain.RebuiltSession) error {
	var firstStart int64
	for _, event := range session.Events {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO study_logs (event_type, subject, content, start_time, end_time, duration_minutes) VALUES (?, ?, ?, ?, ?, ?)`,
			event.EventType, nullable(session.Subject), nullable(event.Content), event.StartTime, nullable(event.EndTime), nullableInt(event.DurationMinutes))
		if err != nil {
			return fmt.Errorf("insert %s: %w", event.EventType, err)
		}
		if firstStart == 0 && event.EventType == "START" {
			if firstStart, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("start id: %w", err)
			}
		}
	}
	if firstStart == 0 || session.Summary == nil || *session.Summary == "" {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `UPDATE study_logs SET summary = ? WHERE id = ?`, *session.Summary, firstStart); err != nil {
		return fmt.Errorf("set session summary: %w", err)
	}
	return nil
}

func nullable(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}
