package domain

import "sort"

// SessionView groups one START and everything logged after it on the same
// day until the next START.
type SessionView struct {
	SessionID    int64
	Subject      *string
	Summary      *string
	Entries      []Entry
	StudyMinutes int
}

type DayView struct {
	Date         string
	Entries      []Entry
	Sessions     []SessionView
	TotalMinutes int
	Subjects     []string
}

// GroupDay builds the per-session view of one day. entries must be ordered
// by start time; entries before the day's first START belong to no session.
func GroupDay(date string, entries []Entry) DayView {
	view := DayView{Date: date, Entries: entries, Sessions: []SessionView{}, Subjects: []string{}}
	var current *SessionView
	flush := func() {
		if current != nil {
			view.Sessions = append(view.Sessions, *current)
		}
	}
	for _, entry := range entries {
		if entry.EventType == EventStart {
			flush()
			current = &SessionView{SessionID: entry.ID, Subject: entry.Subject, Summary: entry.Summary}
		}
		if current == nil {
			continue
		}
		current.Entries = append(current.Entries, entry)
		current.StudyMinutes += entry.StudyMinutes()
	}
	flush()

	subjects := map[string]struct{}{}
	for _, session := range view.Sessions {
		view.TotalMinutes += session.StudyMinutes
		if session.Subject != nil {
			subjects[*session.Subject] = struct{}{}
		}
	}
	for subject := range subjects {
		view.Subjects = append(view.Subjects, subject)
	}
	sort.Strings(view.Subjects)
	return view
}
