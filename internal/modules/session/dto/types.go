package dto

type EntryOutput struct {
	ID              int64   `json:"id"`
	EventType       string  `json:"event_type"`
	Subject         *string `json:"subject"`
	Content         *string `json:"content"`
	StartTime       string  `json:"start_time"`
	EndTime         *string `json:"end_time"`
	DurationMinutes *int    `json:"duration_minutes"`
	Summary         *string `json:"summary"`
	Memo            *string `json:"memo"`
	Impression      *string `json:"impression"`
}

type StartInput struct {
	Subject    string
	Content    string
	Memo       *string
	Impression *string
}

type BreakInput struct {
	Content *string
}

type ResumeInput struct {
	Memo       *string
	Impression *string
}

// TransitionOutput reports what a state-machine step changed.
type TransitionOutput struct {
	State  string       `json:"state"`
	Closed *EntryOutput `json:"closed,omitempty"`
	Opened *EntryOutput `json:"opened,omitempty"`
}

type MergeInput struct {
	Session1ID int64
	Session2ID int64
}

type MergeOutput struct {
	SessionID int64       `json:"session_id"`
	Break     EntryOutput `json:"break"`
	Resumed   EntryOutput `json:"resumed"`
}

type ActiveOutput struct {
	Active    bool         `json:"active"`
	State     string       `json:"state"`
	EventType string       `json:"event_type,omitempty"`
	Entry     *EntryOutput `json:"entry,omitempty"`
}

type UpdateEntryInput struct {
	ID    int64
	Field string
	Value *string
}

type UpdateEndTimeInput struct {
	ID      int64
	EndTime string
}

type SessionSummaryInput struct {
	Summary   *string
	SessionID *int64
}

type SessionOutput struct {
	SessionID         int64         `json:"session_id"`
	Subject           *string       `json:"subject"`
	Summary           *string       `json:"summary"`
	SessionStartTime  string        `json:"session_start_time"`
	SessionEndTime    string        `json:"session_end_time"`
	TotalStudyMinutes int           `json:"total_study_minutes"`
	Details           []EntryOutput `json:"details"`
}

type DayOutput struct {
	Date                 string          `json:"date"`
	TotalDayStudyMinutes int             `json:"total_day_study_minutes"`
	SubjectsStudied      []string        `json:"subjects_studied"`
	Sessions             []SessionOutput `json:"sessions"`
	AllEntries           []EntryOutput   `json:"all_entries"`
}

type RecalculateOutput struct {
	Updated int `json:"updated"`
}
