package domain_test

import (
	"errors"
	"testing"

	"studylog/internal/modules/session/domain"
	apperrors "studylog/internal/platform/errors"
)

func closedEntry(id int64, eventType domain.EventType, content, start, end string) domain.Entry {
	entry := domain.Entry{ID: id, EventType: eventType, StartTime: at(start)}
	if content != "" {
		entry.Content = domain.StringPtr(content)
	}
	if end != "" {
		entry.Close(at(end))
	}
	return entry
}

func TestPlanMerge(t *testing.T) {
	t.Parallel()
	first := closedEntry(1, domain.EventStart, "ch1", "09:00:00", "09:50:00")
	first.Subject = domain.StringPtr("Math")
	second := closedEntry(4, domain.EventStart, "ch2", "11:00:00", "")
	second.Subject = domain.StringPtr("Math")
	last := closedEntry(3, domain.EventResume, "ch1", "10:00:00", "10:30:00")

	changes, err := domain.PlanMerge(first, second, &last)
	if err != nil {
		t.Fatalf("plan merge: %v", err)
	}
	if len(changes.Inserts) != 1 || len(changes.Updates) != 1 || len(changes.Deletes) != 0 {
		t.Fatalf("unexpected changes %+v", changes)
	}
	gap := changes.Inserts[0]
	if gap.EventType != domain.EventBreak || *gap.Subject != "Math" || *gap.Content != domain.MergeBreakContent {
		t.Fatalf("unexpected gap entry %+v", gap)
	}
	if !gap.StartTime.Equal(at("10:30:00")) || !gap.EndTime.Equal(at("11:00:00")) || gap.DurationMinutes != nil {
		t.Fatalf("gap must span last close to second start, got %+v", gap)
	}
	resumed := changes.Updates[0]
	if resumed.ID != 4 || resumed.EventType != domain.EventResume || resumed.Summary != nil {
		t.Fatalf("second START must become a RESUME without summary, got %+v", resumed)
	}
}

func TestPlanMergeRejects(t *testing.T) {
	t.Parallel()
	first := closedEntry(1, domain.EventStart, "ch1", "09:00:00", "09:50:00")
	second := closedEntry(4, domain.EventStart, "ch2", "11:00:00", "")
	open := closedEntry(3, domain.EventResume, "ch1", "10:00:00", "")

	withSummary := second
	withSummary.Summary = domain.StringPtr("done")
	if _, err := domain.PlanMerge(first, withSummary, &first); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("nil vs set summary must not match, got %v", err)
	}
	if _, err := domain.PlanMerge(first, second, &open); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("open last entry must be rejected, got %v", err)
	}
	if _, err := domain.PlanMerge(first, second, nil); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("missing last entry must be rejected, got %v", err)
	}
	notStart := closedEntry(2, domain.EventBreak, "", "09:50:00", "10:00:00")
	if _, err := domain.PlanMerge(first, notStart, &first); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("non START entry must be not found, got %v", err)
	}
	if _, err := domain.PlanMerge(second, first, &first); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("reversed order must be rejected, got %v", err)
	}
}

func TestPlanConsolidation(t *testing.T) {
	t.Parallel()
	resume := closedEntry(5, domain.EventResume, "A", "10:00:00", "10:20:00")
	brk := closedEntry(6, domain.EventBreak, "B", "10:20:00", "10:35:00")

	changes, err := domain.PlanConsolidation([]domain.Entry{brk, resume})
	if err != nil {
		t.Fatalf("plan consolidation: %v", err)
	}
	merged := changes.Updates[0]
	if *merged.Content != "A B" || !merged.EndTime.Equal(at("10:35:00")) || *merged.DurationMinutes != 20 {
		t.Fatalf("unexpected merged entry %+v", merged)
	}
	if len(changes.Deletes) != 1 || changes.Deletes[0] != 6 {
		t.Fatalf("BREAK must be deleted, got %+v", changes.Deletes)
	}
}

func TestPlanConsolidationSkipsEmptyContent(t *testing.T) {
	t.Parallel()
	cases := []struct {
		resume, brk string
		want        string
	}{
		{"", "B", "B"},
		{"A", "", "A"},
	}
	for _, tc := range cases {
		resume := closedEntry(5, domain.EventResume, tc.resume, "10:00:00", "10:20:00")
		brk := closedEntry(6, domain.EventBreak, tc.brk, "10:20:00", "10:35:00")
		changes, err := domain.PlanConsolidation([]domain.Entry{brk, resume})
		if err != nil {
			t.Fatalf("plan consolidation: %v", err)
		}
		if got := *changes.Updates[0].Content; got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestPlanConsolidationRejectsOtherShapes(t *testing.T) {
	t.Parallel()
	start := closedEntry(1, domain.EventStart, "A", "09:00:00", "09:30:00")
	brk := closedEntry(2, domain.EventBreak, "B", "09:30:00", "09:40:00")
	resume := closedEntry(3, domain.EventResume, "A", "09:40:00", "")

	for _, newest := range [][]domain.Entry{
		nil,
		{brk},
		{brk, start},
		{resume, brk},
	} {
		if _, err := domain.PlanConsolidation(newest); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("expected validation error for %d entries, got %v", len(newest), err)
		}
	}
}

func TestGroupDay(t *testing.T) {
	t.Parallel()
	stray := closedEntry(1, domain.EventResume, "yesterday", "00:10:00", "00:40:00")
	start := closedEntry(2, domain.EventStart, "ch1", "09:00:00", "09:30:00")
	start.Subject = domain.StringPtr("Math")
	brk := closedEntry(3, domain.EventBreak, "", "09:30:00", "09:40:00")
	resume := closedEntry(4, domain.EventResume, "ch1", "09:40:00", "10:00:00")
	other := closedEntry(5, domain.EventStart, "intro", "13:00:00", "")
	other.Subject = domain.StringPtr("English")

	view := domain.GroupDay("2026-03-01", []domain.Entry{stray, start, brk, resume, other})
	if len(view.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(view.Sessions))
	}
	if view.Sessions[0].SessionID != 2 || view.Sessions[0].StudyMinutes != 50 || len(view.Sessions[0].Entries) != 3 {
		t.Fatalf("unexpected first session %+v", view.Sessions[0])
	}
	if view.TotalMinutes != 50 {
		t.Fatalf("open entries and entries before the first START must not count, got %d", view.TotalMinutes)
	}
	if len(view.Subjects) != 2 || view.Subjects[0] != "English" || view.Subjects[1] != "Math" {
		t.Fatalf("unexpected subjects %v", view.Subjects)
	}
	if len(view.Entries) != 5 {
		t.Fatalf("all entries must be listed")
	}
}
