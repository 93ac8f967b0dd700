package dto

import "time"

type SnapshotOutput struct {
	Pool    string    `json:"pool"`
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	TakenAt time.Time `json:"taken_at"`
	Size    int64     `json:"size"`
}

type RecoveryOutput struct {
	Applied   bool            `json:"applied"`
	Message   string          `json:"message"`
	Restored  *SnapshotOutput `json:"restored,omitempty"`
	Preserved *SnapshotOutput `json:"preserved,omitempty"`
}

type SnapshotInput struct {
	Pool        string
	Description string
}

type RestoreInput struct {
	Path string
}

// RebuildInput mirrors the JSON clients send: a day summary and sessions
// whose details carry clock times only.
type RebuildInput struct {
	DailySummary *string          `json:"daily_summary"`
	Sessions     []RebuildSession `json:"sessions"`
}

type RebuildSession struct {
	Subject *string        `json:"subject"`
	Summary *string        `json:"summary"`
	Details []RebuildEvent `json:"details"`
}

type RebuildEvent struct {
	EventType       string  `json:"event_type" validate:"required,oneof=START BREAK RESUME"`
	Content         *string `json:"content"`
	StartTime       string  `json:"start_time" validate:"required"`
	EndTime         *string `json:"end_time"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,gte=0"`
}

type RebuildOutput struct {
	Date     string `json:"date"`
	Sessions int    `json:"sessions"`
	Entries  int    `json:"entries"`
}
