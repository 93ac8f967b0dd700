package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"studylog/internal/platform/clock"
	apperrors "studylog/internal/platform/errors"
)

type EventType string

const (
	EventStart  EventType = "START"
	EventResume EventType = "RESUME"
	EventBreak  EventType = "BREAK"
)

func ParseEventType(value string) (EventType, error) {
	switch EventType(strings.ToUpper(strings.TrimSpace(value))) {
	case EventStart:
		return EventStart, nil
	case EventResume:
		return EventResume, nil
	case EventBreak:
		return EventBreak, nil
	default:
		return "", fmt.Errorf("unknown event type %q: %w", value, apperrors.ErrInvalidInput)
	}
}

// Studying reports whether time spent in the entry counts as study time.
func (t EventType) Studying() bool {
	return t == EventStart || t == EventResume
}

// Entry is one row of the study log. Nil pointers are NULL columns.
type Entry struct {
	ID              int64
	EventType       EventType
	Subject         *string
	Content         *string
	StartTime       time.Time
	EndTime         *time.Time
	DurationMinutes *int
	Summary         *string
	Memo            *string
	Impression      *string
}

func (e Entry) Open() bool {
	return e.EndTime == nil
}

// Close sets the end time and the derived duration.
func (e *Entry) Close(at time.Time) {
	end := at
	minutes := DurationMinutes(e.StartTime, end)
	e.EndTime = &end
	e.DurationMinutes = &minutes
}

// StudyMinutes is the closed duration of a START or RESUME entry, zero for
// anything else.
func (e Entry) StudyMinutes() int {
	if !e.EventType.Studying() || e.EndTime == nil {
		return 0
	}
	return DurationMinutes(e.StartTime, *e.EndTime)
}

// DurationMinutes floors the elapsed whole seconds to minutes.
func DurationMinutes(start, end time.Time) int {
	seconds := end.Truncate(time.Second).Sub(start.Truncate(time.Second)).Seconds()
	return int(math.Floor(seconds / 60))
}

// EditableFields lists the columns SetField accepts.
var EditableFields = []string{
	"memo", "impression", "content", "subject", "summary",
	"event_type", "start_time", "end_time", "duration_minutes",
}

// SetField assigns one column from its textual form. A nil value writes NULL
// where the column allows it.
func (e *Entry) SetField(field string, value *string, loc *time.Location) error {
	switch field {
	case "memo":
		e.Memo = value
	case "impression":
		e.Impression = value
	case "content":
		e.Content = value
	case "subject":
		e.Subject = value
	case "summary":
		e.Summary = value
	case "event_type":
		if value == nil {
			return fmt.Errorf("event_type cannot be null: %w", apperrors.ErrInvalidInput)
		}
		eventType, err := ParseEventType(*value)
		if err != nil {
			return err
		}
		e.EventType = eventType
	case "start_time":
		if value == nil {
			return fmt.Errorf("start_time cannot be null: %w", apperrors.ErrInvalidInput)
		}
		start, err := parseTimestamp(*value, loc)
		if err != nil {
			return err
		}
		e.StartTime = start
	case "end_time":
		if value == nil {
			e.EndTime = nil
			return nil
		}
		end, err := parseTimestamp(*value, loc)
		if err != nil {
			return err
		}
		e.EndTime = &end
	case "duration_minutes":
		if value == nil {
			e.DurationMinutes = nil
			return nil
		}
		minutes, err := strconv.Atoi(strings.TrimSpace(*value))
		if err != nil {
			return fmt.Errorf("duration_minutes %q is not an integer: %w", *value, apperrors.ErrInvalidInput)
		}
		e.DurationMinutes = &minutes
	default:
		return fmt.Errorf("field %q cannot be updated: %w", field, apperrors.ErrInvalidInput)
	}
	return nil
}

func parseTimestamp(value string, loc *time.Location) (time.Time, error) {
	t, err := clock.Parse(strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q must look like %s: %w", value, clock.TimestampLayout, apperrors.ErrInvalidInput)
	}
	return t, nil
}

// ParseTimestamp reads a wall-clock timestamp supplied by a caller.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	return parseTimestamp(value, loc)
}

// Changes is a set of row edits applied in one transaction.
type Changes struct {
	Updates []Entry
	Inserts []Entry
	Deletes []int64
}

func (c Changes) Empty() bool {
	return len(c.Updates) == 0 && len(c.Inserts) == 0 && len(c.Deletes) == 0
}

func StringPtr(value string) *string {
	return &value
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
