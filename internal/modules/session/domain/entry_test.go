package domain_test

import (
	"errors"
	"testing"
	"time"

	"studylog/internal/modules/session/domain"
	apperrors "studylog/internal/platform/errors"
)

func at(clock string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", "2026-03-01 "+clock, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDurationMinutesFloors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		start, end string
		want       int
	}{
		{"09:00:00", "09:45:30", 45},
		{"09:00:00", "09:00:59", 0},
		{"09:00:00", "10:00:00", 60},
		{"09:00:30", "09:02:29", 1},
	}
	for _, tc := range cases {
		if got := domain.DurationMinutes(at(tc.start), at(tc.end)); got != tc.want {
			t.Fatalf("%s -> %s: expected %d, got %d", tc.start, tc.end, tc.want, got)
		}
	}
}

func TestCloseSetsEndAndDuration(t *testing.T) {
	t.Parallel()
	entry := domain.Entry{EventType: domain.EventStart, StartTime: at("09:00:00")}
	if !entry.Open() {
		t.Fatalf("new entry must be open")
	}
	entry.Close(at("09:45:30"))
	if entry.Open() || *entry.DurationMinutes != 45 {
		t.Fatalf("unexpected close result %+v", entry)
	}
	if entry.StudyMinutes() != 45 {
		t.Fatalf("START minutes count as study time")
	}
	brk := domain.Entry{EventType: domain.EventBreak, StartTime: at("09:00:00")}
	brk.Close(at("09:10:00"))
	if brk.StudyMinutes() != 0 {
		t.Fatalf("BREAK minutes must not count as study time")
	}
}

func TestSetField(t *testing.T) {
	t.Parallel()
	entry := domain.Entry{EventType: domain.EventStart, StartTime: at("09:00:00")}

	if err := entry.SetField("memo", domain.StringPtr("note"), time.UTC); err != nil || *entry.Memo != "note" {
		t.Fatalf("set memo: %v", err)
	}
	if err := entry.SetField("event_type", domain.StringPtr("resume"), time.UTC); err != nil || entry.EventType != domain.EventResume {
		t.Fatalf("set event_type: %v", err)
	}
	if err := entry.SetField("end_time", domain.StringPtr("2026-03-01 10:00:00"), time.UTC); err != nil || !entry.EndTime.Equal(at("10:00:00")) {
		t.Fatalf("set end_time: %v", err)
	}
	if err := entry.SetField("end_time", nil, time.UTC); err != nil || entry.EndTime != nil {
		t.Fatalf("clear end_time: %v", err)
	}
	if err := entry.SetField("duration_minutes", domain.StringPtr("12"), time.UTC); err != nil || *entry.DurationMinutes != 12 {
		t.Fatalf("set duration: %v", err)
	}

	for _, bad := range []struct {
		field string
		value *string
	}{
		{"id", domain.StringPtr("3")},
		{"event_type", domain.StringPtr("LUNCH")},
		{"event_type", nil},
		{"start_time", domain.StringPtr("09:00")},
		{"duration_minutes", domain.StringPtr("ten")},
	} {
		if err := entry.SetField(bad.field, bad.value, time.UTC); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("%s must be rejected, got %v", bad.field, err)
		}
	}
}
