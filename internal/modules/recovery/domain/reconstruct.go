package domain

import (
	"fmt"
	"strings"
	"time"
)

// Reconstruction is a full replacement of the record store contents: one
// day's summary and its sessions. Goals are not carried; a rebuild leaves the
// goals table empty.
type Reconstruction struct {
	Date         string
	DailySummary *string
	Sessions     []RebuiltSession
}

type RebuiltSession struct {
	Subject *string
	Summary *string
	Events  []RebuiltEvent
}

// RebuiltEvent times arrive as HH:MM or HH:MM:SS and are stored as full
// timestamps on the reconstruction date.
type RebuiltEvent struct {
	EventType       string
	Content         *string
	StartTime       string
	EndTime         *string
	DurationMinutes *int
}

var rebuiltEventTypes = map[string]bool{"START": true, "BREAK": true, "RESUME": true}

// OnDate validates r and returns a copy dated date with every event time
// expanded to "date HH:MM:SS".
func (r Reconstruction) OnDate(date string) (Reconstruction, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return Reconstruction{}, fmt.Errorf("reconstruction date %q: %w", date, err)
	}
	out := Reconstruction{Date: date, DailySummary: r.DailySummary, Sessions: make([]RebuiltSession, 0, len(r.Sessions))}
	for i, session := range r.Sessions {
		rebuilt := RebuiltSession{Subject: session.Subject, Summary: session.Summary, Events: make([]RebuiltEvent, 0, len(session.Events))}
		for j, event := range session.Events {
			if !rebuiltEventTypes[event.EventType] {
				return Reconstruction{}, fmt.Errorf("session %d event %d: unknown event type %q", i, j, event.EventType)
			}
			start, err := expandClock(date, event.StartTime)
			if err != nil {
				return Reconstruction{}, fmt.Errorf("session %d event %d start: %w", i, j, err)
			}
			event.StartTime = start
			if event.EndTime != nil {
				end, err := expandClock(date, *event.EndTime)
				if err != nil {
					return Reconstruction{}, fmt.Errorf("session %d event %d end: %w", i, j, err)
				}
				event.EndTime = &end
			}
			if event.DurationMinutes != nil && *event.DurationMinutes < 0 {
				return Reconstruction{}, fmt.Errorf("session %d event %d: negative duration", i, j)
			}
			rebuilt.Events = append(rebuilt.Events, event)
		}
		out.Sessions = append(out.Sessions, rebuilt)
	}
	return out, nil
}

// EventCount is the number of log entries the rebuild writes.
func (r Reconstruction) EventCount() int {
	n := 0
	for _, s := range r.Sessions {
		n += len(s.Events)
	}
	return n
}

func expandClock(date, value string) (string, error) {
	value = strings.TrimSpace(value)
	if strings.Count(value, ":") == 1 {
		value += ":00"
	}
	if _, err := time.Parse("15:04:05", value); err != nil {
		return "", fmt.Errorf("time %q must look like HH:MM or HH:MM:SS", value)
	}
	return date + " " + value, nil
}
