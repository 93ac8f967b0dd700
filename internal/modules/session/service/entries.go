package service

import (
	"context"
	"fmt"
	"time"

	"studylog/internal/modules/session/domain"
	apperrors "studylog/internal/platform/errors"
)

func (s *SessionService) location() *time.Location {
	return s.clock.Now().Location()
}

func (s *SessionService) GetEntry(ctx context.Context, id int64) (domain.Entry, error) {
	return s.store.FindByID(ctx, id)
}

// UpdateEntry rewrites one column. Reopening an entry is refused while
// another entry is open.
func (s *SessionService) UpdateEntry(ctx context.Context, id int64, field string, value *string) (domain.Entry, error) {
	entry, err := s.store.FindByID(ctx, id)
	if err != nil {
		return domain.Entry{}, err
	}
	if err := entry.SetField(field, value, s.location()); err != nil {
		return domain.Entry{}, err
	}
	if entry.Open() {
		open, ok, err := s.store.LatestOpen(ctx)
		if err != nil {
			return domain.Entry{}, err
		}
		if ok && open.ID != entry.ID {
			return domain.Entry{}, fmt.Errorf("entry %d is still open: %w", open.ID, apperrors.ErrActiveSessionExists)
		}
	}
	if err := s.apply(ctx, descUpdateEntry, domain.Changes{Updates: []domain.Entry{entry}}); err != nil {
		return domain.Entry{}, err
	}
	s.logger.Info("log entry updated", "id", id, "field", field)
	return entry, nil
}

// UpdateEndTime closes (or re-closes) an entry at end and recomputes its
// duration.
func (s *SessionService) UpdateEndTime(ctx context.Context, id int64, end string) (domain.Entry, error) {
	at, err := domain.ParseTimestamp(end, s.location())
	if err != nil {
		return domain.Entry{}, err
	}
	entry, err := s.store.FindByID(ctx, id)
	if err != nil {
		return domain.Entry{}, err
	}
	if at.Before(entry.StartTime) {
		return domain.Entry{}, fmt.Errorf("end time %s precedes start time: %w", end, apperrors.ErrInvalidInput)
	}
	entry.Close(at)
	if err := s.apply(ctx, descUpdateEndTime, domain.Changes{Updates: []domain.Entry{entry}}); err != nil {
		return domain.Entry{}, err
	}
	return entry, nil
}

func (s *SessionService) DeleteEntry(ctx context.Context, id int64) error {
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.apply(ctx, descDeleteEntry, domain.Changes{Deletes: []int64{id}}); err != nil {
		return err
	}
	s.logger.Info("log entry deleted", "id", id)
	return nil
}

func (s *SessionService) Day(ctx context.Context, date string) (domain.DayView, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return domain.DayView{}, fmt.Errorf("date %q must look like 2006-01-02: %w", date, apperrors.ErrInvalidInput)
	}
	entries, err := s.store.ListByDate(ctx, date)
	if err != nil {
		return domain.DayView{}, err
	}
	return domain.GroupDay(date, entries), nil
}

// RecalculateDurations recomputes duration_minutes for every closed entry
// and reports how many rows changed.
func (s *SessionService) RecalculateDurations(ctx context.Context) (int, error) {
	closed, err := s.store.ListClosed(ctx)
	if err != nil {
		return 0, err
	}
	changes := domain.Changes{}
	for _, entry := range closed {
		want := domain.DurationMinutes(entry.StartTime, *entry.EndTime)
		if entry.DurationMinutes != nil && *entry.DurationMinutes == want {
			continue
		}
		entry.DurationMinutes = &want
		changes.Updates = append(changes.Updates, entry)
	}
	if changes.Empty() {
		return 0, nil
	}
	if err := s.apply(ctx, descRecalculate, changes); err != nil {
		return 0, err
	}
	s.logger.Info("durations recalculated", "updated", len(changes.Updates))
	return len(changes.Updates), nil
}
