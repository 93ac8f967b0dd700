package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"studylog/internal/modules/planner/domain"
	plannerout "studylog/internal/modules/planner/port/out"
	"studylog/internal/platform/clock"
	apperrors "studylog/internal/platform/errors"
	"studylog/internal/platform/recordstore"
)

const goalColumns = `id, date, task, completed, subject, total_problems, completed_problems, tags, details, created_at, updated_at`

type SQLiteGoalStore struct {
	store *recordstore.Store
	loc   *time.Location
}

func NewSQLiteGoalStore(store *recordstore.Store, loc *time.Location) plannerout.GoalStore {
	if loc == nil {
		loc = time.Local
	}
	return &SQLiteGoalStore{store: store, loc: loc}
}

func (s *SQLiteGoalStore) Insert(ctx context.Context, goal domain.Goal) error {
	tags, err := encodeTags(goal.Tags)
	if err != nil {
		return err
	}
	const stmt = `
INSERT INTO goals (` + goalColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.store.DB().ExecContext(ctx, stmt,
		goal.ID, goal.Date, goal.Task, boolInt(goal.Completed), nullString(goal.Subject),
		nullInt(goal.TotalProblems), nullInt(goal.CompletedProblems), tags, nullString(goal.Details),
		clock.Format(goal.CreatedAt), clock.Format(goal.UpdatedAt))
	if err != nil {
		return fmt.Errorf("%w: insert goal: %w", apperrors.ErrStorage, err)
	}
	return nil
}

func (s *SQLiteGoalStore) UpsertAll(ctx context.Context, goals []domain.Goal) error {
	const stmt = `
INSERT OR REPLACE INTO goals (` + goalColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	return s.store.WithTx(ctx, func(tx *sql.Tx) error {
		for _, goal := range goals {
			tags, err := encodeTags(goal.Tags)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, stmt,
				goal.ID, goal.Date, goal.Task, boolInt(goal.Completed), nullString(goal.Subject),
				nullInt(goal.TotalProblems), nullInt(goal.CompletedProblems), tags, nullString(goal.Details),
				clock.Format(goal.CreatedAt), clock.Format(goal.UpdatedAt))
			if err != nil {
				return fmt.Errorf("%w: upsert goal %s: %w", apperrors.ErrStorage, goal.ID, err)
			}
		}
		return nil
	})
}

func (s *SQLiteGoalStore) Update(ctx context.Context, goal domain.Goal) error {
	tags, err := encodeTags(goal.Tags)
	if err != nil {
		return err
	}
	const stmt = `
UPDATE goals SET
  date=?, task=?, completed=?, subject=?, total_problems=?, completed_problems=?,
  tags=?, details=?, updated_at=?
WHERE id=?`
	res, err := s.store.DB().ExecContext(ctx, stmt,
		goal.Date, goal.Task, boolInt(goal.Completed), nullString(goal.Subject),
		nullInt(goal.TotalProblems), nullInt(goal.CompletedProblems), tags, nullString(goal.Details),
		clock.Format(goal.UpdatedAt), goal.ID)
	if err != nil {
		return fmt.Errorf("%w: update goal: %w", apperrors.ErrStorage, err)
	}
	return requireRow(res, goal.ID)
}

func (s *SQLiteGoalStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.DB().ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: delete goal: %w", apperrors.ErrStorage, err)
	}
	return requireRow(res, id)
}

func (s *SQLiteGoalStore) FindByID(ctx context.Context, id string) (domain.Goal, error) {
	goals, err := s.query(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id)
	if err != nil {
		return domain.Goal{}, err
	}
	if len(goals) == 0 {
		return domain.Goal{}, fmt.Errorf("goal %s: %w", id, apperrors.ErrNotFound)
	}
	return goals[0], nil
}

func (s *SQLiteGoalStore) ListByDate(ctx context.Context, date string) ([]domain.Goal, error) {
	return s.query(ctx, `SELECT `+goalColumns+` FROM goals WHERE date = ? ORDER BY created_at, id`, date)
}

func (s *SQLiteGoalStore) query(ctx context.Context, query string, args ...any) ([]domain.Goal, error) {
	rows, err := s.store.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query goals: %w", apperrors.ErrStorage, err)
	}
	defer rows.Close()
	out := []domain.Goal{}
	for rows.Next() {
		var (
			goal                   domain.Goal
			completed              int
			subject, tags, details sql.NullString
			total, done            sql.NullInt64
			createdAt, updatedAt   string
		)
		if err := rows.Scan(&goal.ID, &goal.Date, &goal.Task, &completed, &subject, &total, &done, &tags, &details, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan goal: %w", apperrors.ErrStorage, err)
		}
		goal.Completed = completed != 0
		goal.Subject = stringPtr(subject)
		goal.Details = stringPtr(details)
		goal.TotalProblems = intPtr(total)
		goal.CompletedProblems = intPtr(done)
		goal.Tags = decodeTags(tags)
		// timestamps written by older tools may not parse; keep the zero time
		goal.CreatedAt, _ = clock.Parse(createdAt, s.loc)
		goal.UpdatedAt, _ = clock.Parse(updatedAt, s.loc)
		out = append(out, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate goals: %w", apperrors.ErrStorage, err)
	}
	return out, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

// decodeTags treats unreadable tag columns as no tags.
func decodeTags(value sql.NullString) []string {
	tags := []string{}
	if !value.Valid || value.String == "" {
		return tags
	}
	if err := json.Unmarshal([]byte(value.String), &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %w", apperrors.ErrStorage, err)
	}
	if n == 0 {
		return fmt.Errorf("goal %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func boolInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	return &value.String
}

func intPtr(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	n := int(value.Int64)
	return &n
}

func nullString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}
