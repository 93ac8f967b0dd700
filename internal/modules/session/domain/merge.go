package domain

import (
	"fmt"
	"strings"

	apperrors "studylog/internal/platform/errors"
)

const MergeBreakContent = "auto-inserted by session merge"

// PlanMerge joins the session rooted at first with the later session rooted
// at second. lastOfFirst is the newest entry in [first.ID, second.ID), nil
// when there is none. The gap becomes a closed BREAK and second's START turns
// into a RESUME without its own summary.
func PlanMerge(first, second Entry, lastOfFirst *Entry) (Changes, error) {
	if first.EventType != EventStart {
		return Changes{}, fmt.Errorf("START entry %d: %w", first.ID, apperrors.ErrNotFound)
	}
	if second.EventType != EventStart {
		return Changes{}, fmt.Errorf("START entry %d: %w", second.ID, apperrors.ErrNotFound)
	}
	if first.ID >= second.ID {
		return Changes{}, fmt.Errorf("session %d must precede session %d: %w", first.ID, second.ID, apperrors.ErrInvalidInput)
	}
	if !sameString(first.Summary, second.Summary) {
		return Changes{}, fmt.Errorf("session summaries differ, reconcile them manually first: %w", apperrors.ErrInvalidInput)
	}
	if lastOfFirst == nil || lastOfFirst.EndTime == nil {
		return Changes{}, fmt.Errorf("session %d has no end time: %w", first.ID, apperrors.ErrInvalidInput)
	}

	// the gap keeps a NULL duration; RecalculateDurations fills it in
	gapEnd := second.StartTime
	gap := Entry{
		EventType: EventBreak,
		Subject:   first.Subject,
		Content:   StringPtr(MergeBreakContent),
		StartTime: *lastOfFirst.EndTime,
		EndTime:   &gapEnd,
	}

	resumed := second
	resumed.EventType = EventResume
	resumed.Summary = nil

	return Changes{Updates: []Entry{resumed}, Inserts: []Entry{gap}}, nil
}

// PlanConsolidation folds a trailing BREAK into the RESUME right before it.
// Only content and end time move; the RESUME's stored duration is left as is.
// newest holds the most recent entries, newest first.
func PlanConsolidation(newest []Entry) (Changes, error) {
	if len(newest) < 2 {
		return Changes{}, fmt.Errorf("need at least two log entries to consolidate: %w", apperrors.ErrInvalidInput)
	}
	brk, resume := newest[0], newest[1]
	if brk.EventType != EventBreak || resume.EventType != EventResume {
		return Changes{}, fmt.Errorf("last two entries are %s, %s; want RESUME, BREAK: %w",
			resume.EventType, brk.EventType, apperrors.ErrInvalidInput)
	}

	merged := resume
	merged.Content = joinContent(resume.Content, brk.Content)
	merged.EndTime = brk.EndTime
	return Changes{Updates: []Entry{merged}, Deletes: []int64{brk.ID}}, nil
}

func joinContent(first, second *string) *string {
	parts := make([]string, 0, 2)
	for _, part := range []*string{first, second} {
		if part != nil && *part != "" {
			parts = append(parts, *part)
		}
	}
	if len(parts) == 0 {
		return first
	}
	return StringPtr(strings.Join(parts, " "))
}
