package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "studylog/internal/platform/errors"
)

type startParams struct {
	Subject    string  `json:"subject" validate:"required"`
	Content    string  `json:"content" validate:"required"`
	Memo       *string `json:"memo"`
	Impression *string `json:"impression"`
}

type breakParams struct {
	Content      *string `json:"content"`
	BreakContent *string `json:"break_content"`
}

type resumeParams struct {
	Memo       *string `json:"memo"`
	Impression *string `json:"impression"`
}

type mergeParams struct {
	Session1ID int64 `json:"session1_id" validate:"required,gt=0"`
	Session2ID int64 `json:"session2_id" validate:"required,gt=0,nefield=Session1ID"`
}

type sessionSummaryParams struct {
	Text      *string `json:"text"`
	SessionID *int64  `json:"session_id" validate:"omitempty,gt=0"`
}

type idParams struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

type updateEntryParams struct {
	ID    int64           `json:"id" validate:"required,gt=0"`
	Field string          `json:"field" validate:"required"`
	Value json.RawMessage `json:"value"`
}

type updateEndTimeParams struct {
	ID      int64  `json:"id" validate:"required,gt=0"`
	EndTime string `json:"end_time" validate:"required"`
}

type dateParams struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type requiredDateParams struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

type backupParams struct {
	Pool        string `json:"pool" validate:"omitempty,oneof=short_term long_term redo short-term long-term"`
	Description string `json:"description"`
}

type restoreParams struct {
	BackupPath string `json:"backup_path" validate:"required"`
}

type poolParams struct {
	Pool string `json:"pool" validate:"omitempty,oneof=short_term long_term redo short-term long-term"`
}

type dailySummaryParams struct {
	Text *string `json:"text"`
	Date string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type goalFields struct {
	Task              string   `json:"task" validate:"required"`
	Subject           *string  `json:"subject"`
	TotalProblems     *int     `json:"total_problems" validate:"omitempty,gte=0"`
	CompletedProblems *int     `json:"completed_problems" validate:"omitempty,gte=0"`
	Tags              []string `json:"tags"`
	Details           *string  `json:"details"`
}

type addGoalParams struct {
	Date string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Goal json.RawMessage `json:"goal" validate:"required"`
}

// dailyGoalFields requires subject and completed to be present; subject may
// still be null.
type dailyGoalFields struct {
	ID                string          `json:"id"`
	Task              string          `json:"task" validate:"required"`
	Completed         *bool           `json:"completed" validate:"required"`
	Subject           json.RawMessage `json:"subject" validate:"required"`
	TotalProblems     *int            `json:"total_problems" validate:"omitempty,gte=0"`
	CompletedProblems *int            `json:"completed_problems" validate:"omitempty,gte=0"`
	Tags              []string        `json:"tags"`
	Details           *string         `json:"details"`
	CreatedAt         string          `json:"created_at"`
}

type dailyGoalsParams struct {
	Date     string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	GoalJSON json.RawMessage `json:"goal_json" validate:"required"`
}

type reconstructParams struct {
	JSONData json.RawMessage `json:"json_data" validate:"required"`
}

type goalIDParams struct {
	ID string `json:"id" validate:"required"`
}

type updateGoalParams struct {
	ID    string          `json:"id" validate:"required"`
	Field string          `json:"field" validate:"required"`
	Value json.RawMessage `json:"value"`
}

// decodeJSON reads an object that may also arrive JSON-encoded inside a
// string, as older clients send it.
func decodeJSON(raw json.RawMessage, into any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return fmt.Errorf("decode %s: %w", raw, apperrors.ErrInvalidInput)
		}
		raw = json.RawMessage(inner)
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("decode params: %v: %w", err, apperrors.ErrInvalidInput)
	}
	return nil
}

// rawText turns a JSON scalar into the textual form the field setters take:
// null is nil, strings are unquoted, anything else keeps its JSON text.
func rawText(raw json.RawMessage) (*string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode value: %v: %w", err, apperrors.ErrInvalidInput)
		}
		return &s, nil
	}
	s := string(raw)
	return &s, nil
}
