package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"studylog/internal/modules/session/domain"
	sessionout "studylog/internal/modules/session/port/out"
	"studylog/internal/platform/clock"
	apperrors "studylog/internal/platform/errors"
	"studylog/internal/platform/recordstore"
)

const entryColumns = `id, event_type, subject, content, start_time, end_time, duration_minutes, summary, memo, impression`

type SQLiteLogStore struct {
	store *recordstore.Store
	loc   *time.Location
}

func NewSQLiteLogStore(store *recordstore.Store, loc *time.Location) sessionout.LogStore {
	if loc == nil {
		loc = time.Local
	}
	return &SQLiteLogStore{store: store, loc: loc}
}

func (s *SQLiteLogStore) Apply(ctx context.Context, changes domain.Changes) ([]int64, error) {
	ids := make([]int64, 0, len(changes.Inserts))
	err := s.store.WithTx(ctx, func(tx *sql.Tx) error {
		for _, entry := range changes.Updates {
			res, err := tx.ExecContext(ctx, `UPDATE study_logs SET event_type = ?, subject = ?, content = ?, start_time = ?, end_time = ?, duration_minutes = ?, summary = ?, memo = ?, impression = ? WHERE id = ?`,
				string(entry.EventType), nullString(entry.Subject), nullString(entry.Content), clock.Format(entry.StartTime),
				nullTime(entry.EndTime), nullInt(entry.DurationMinutes), nullString(entry.Summary), nullString(entry.Memo), nullString(entry.Impression), entry.ID)
			if err != nil {
				return fmt.Errorf("update entry %d: %w", entry.ID, err)
			}
			if n, err := res.RowsAffected(); err == nil && n == 0 {
				return fmt.Errorf("log entry %d: %w", entry.ID, apperrors.ErrNotFound)
			}
		}
		for _, entry := range changes.Inserts {
			res, err := tx.ExecContext(ctx, `INSERT INTO study_logs (event_type, subject, content, start_time, end_time, duration_minutes, summary, memo, impression) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				string(entry.EventType), nullString(entry.Subject), nullString(entry.Content), clock.Format(entry.StartTime),
				nullTime(entry.EndTime), nullInt(entry.DurationMinutes), nullString(entry.Summary), nullString(entry.Memo), nullString(entry.Impression))
			if err != nil {
				return fmt.Errorf("insert entry: %w", err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("insert entry id: %w", err)
			}
			ids = append(ids, id)
		}
		for _, id := range changes.Deletes {
			if _, err := tx.ExecContext(ctx, `DELETE FROM study_logs WHERE id = ?`, id); err != nil {
				return fmt.Errorf("delete entry %d: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
	}
	return ids, nil
}

func (s *SQLiteLogStore) FindByID(ctx context.Context, id int64) (domain.Entry, error) {
	entry, ok, err := s.one(ctx, `SELECT `+entryColumns+` FROM study_logs WHERE id = ?`, id)
	if err != nil {
		return domain.Entry{}, err
	}
	if !ok {
		return domain.Entry{}, fmt.Errorf("log entry %d: %w", id, apperrors.ErrNotFound)
	}
	return entry, nil
}

func (s *SQLiteLogStore) LatestOpen(ctx context.Context) (domain.Entry, bool, error) {
	return s.one(ctx, `SELECT `+entryColumns+` FROM study_logs WHERE end_time IS NULL ORDER BY start_time DESC, id DESC LIMIT 1`)
}

func (s *SQLiteLogStore) LatestStart(ctx context.Context) (domain.Entry, bool, error) {
	return s.one(ctx, `SELECT `+entryColumns+` FROM study_logs WHERE event_type = 'START' ORDER BY start_time DESC, id DESC LIMIT 1`)
}

func (s *SQLiteLogStore) Latest(ctx context.Context, n int) ([]domain.Entry, error) {
	return s.many(ctx, `SELECT `+entryColumns+` FROM study_logs ORDER BY id DESC LIMIT ?`, n)
}

func (s *SQLiteLogStore) LastBetween(ctx context.Context, fromID, beforeID int64) (domain.Entry, bool, error) {
	return s.one(ctx, `SELECT `+entryColumns+` FROM study_logs WHERE id >= ? AND id < ? ORDER BY start_time DESC, id DESC LIMIT 1`, fromID, beforeID)
}

func (s *SQLiteLogStore) ListByDate(ctx context.Context, date string) ([]domain.Entry, error) {
	return s.many(ctx, `SELECT `+entryColumns+` FROM study_logs WHERE DATE(start_time) = ? ORDER BY start_time, id`, date)
}

func (s *SQLiteLogStore) ListClosed(ctx context.Context) ([]domain.Entry, error) {
	return s.many(ctx, `SELECT `+entryColumns+` FROM study_logs WHERE end_time IS NOT NULL ORDER BY id`)
}

func (s *SQLiteLogStore) one(ctx context.Context, query string, args ...any) (domain.Entry, bool, error) {
	entries, err := s.many(ctx, query, args...)
	if err != nil {
		return domain.Entry{}, false, err
	}
	if len(entries) == 0 {
		return domain.Entry{}, false, nil
	}
	return entries[0], true, nil
}

func (s *SQLiteLogStore) many(ctx context.Context, query string, args ...any) ([]domain.Entry, error) {
	rows, err := s.store.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query log entries: %w", apperrors.ErrStorage, err)
	}
	defer rows.Close()
	out := []domain.Entry{}
	for rows.Next() {
		entry, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate log entries: %w", apperrors.ErrStorage, err)
	}
	return out, nil
}

func (s *SQLiteLogStore) scan(rows *sql.Rows) (domain.Entry, error) {
	var (
		entry                                        domain.Entry
		eventType, start                             string
		subject, content, end, summary, memo, impres sql.NullString
		duration                                     sql.NullInt64
	)
	if err := rows.Scan(&entry.ID, &eventType, &subject, &content, &start, &end, &duration, &summary, &memo, &impres); err != nil {
		return domain.Entry{}, fmt.Errorf("%w: scan log entry: %w", apperrors.ErrStorage, err)
	}
	entry.EventType = domain.EventType(eventType)
	startTime, err := clock.Parse(start, s.loc)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("%w: entry %d start_time %q: %w", apperrors.ErrStorage, entry.ID, start, err)
	}
	entry.StartTime = startTime
	if end.Valid {
		endTime, err := clock.Parse(end.String, s.loc)
		if err != nil {
			return domain.Entry{}, fmt.Errorf("%w: entry %d end_time %q: %w", apperrors.ErrStorage, entry.ID, end.String, err)
		}
		entry.EndTime = &endTime
	}
	if duration.Valid {
		minutes := int(duration.Int64)
		entry.DurationMinutes = &minutes
	}
	entry.Subject = stringPtr(subject)
	entry.Content = stringPtr(content)
	entry.Summary = stringPtr(summary)
	entry.Memo = stringPtr(memo)
	entry.Impression = stringPtr(impres)
	return entry, nil
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	return &value.String
}

func nullString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return clock.Format(*value)
}

func nullInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}
