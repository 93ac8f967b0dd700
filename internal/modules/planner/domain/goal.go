package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "studylog/internal/platform/errors"
)

type Goal struct {
	ID                string
	Date              string
	Task              string
	Completed         bool
	Subject           *string
	TotalProblems     *int
	CompletedProblems *int
	Tags              []string
	Details           *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewGoal holds what a caller supplies when adding a goal; identity,
// completion and timestamps are assigned by the service.
type NewGoal struct {
	Task              string
	Subject           *string
	TotalProblems     *int
	CompletedProblems *int
	Tags              []string
	Details           *string
}

// Build turns the request into an open goal. Progress starts at zero when a
// problem total is known.
func (n NewGoal) Build(id, date string, now time.Time) (Goal, error) {
	goal := Goal{
		ID:                id,
		Date:              date,
		Task:              strings.TrimSpace(n.Task),
		Subject:           n.Subject,
		TotalProblems:     n.TotalProblems,
		CompletedProblems: n.CompletedProblems,
		Tags:              n.Tags,
		Details:           n.Details,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if goal.Tags == nil {
		goal.Tags = []string{}
	}
	if goal.CompletedProblems == nil && goal.TotalProblems != nil {
		zero := 0
		goal.CompletedProblems = &zero
	}
	return goal, goal.Validate()
}

// GoalUpsert is one entry of a day's goal list written as a batch. An empty
// ID gets a fresh one; an empty CreatedAt becomes now. UpdatedAt is always now.
type GoalUpsert struct {
	ID                string
	Task              string
	Completed         bool
	Subject           *string
	TotalProblems     *int
	CompletedProblems *int
	Tags              []string
	Details           *string
	CreatedAt         string
}

func (u GoalUpsert) Build(newID func() string, date string, now time.Time) (Goal, error) {
	goal := Goal{
		ID:                u.ID,
		Date:              date,
		Task:              strings.TrimSpace(u.Task),
		Completed:         u.Completed,
		Subject:           u.Subject,
		TotalProblems:     u.TotalProblems,
		CompletedProblems: u.CompletedProblems,
		Tags:              u.Tags,
		Details:           u.Details,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if goal.ID == "" {
		goal.ID = newID()
	}
	if created := strings.TrimSpace(u.CreatedAt); created != "" {
		at, err := time.ParseInLocation("2006-01-02 15:04:05", created, now.Location())
		if err != nil {
			return Goal{}, fmt.Errorf("created_at %q must look like 2006-01-02 15:04:05: %w", created, apperrors.ErrInvalidInput)
		}
		goal.CreatedAt = at
	}
	if goal.Tags == nil {
		goal.Tags = []string{}
	}
	return goal, goal.Validate()
}

func (g Goal) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("goal id is required: %w", apperrors.ErrInvalidInput)
	}
	if err := ValidateDate(g.Date); err != nil {
		return err
	}
	if g.Task == "" {
		return fmt.Errorf("goal task is required: %w", apperrors.ErrInvalidInput)
	}
	for _, n := range []*int{g.TotalProblems, g.CompletedProblems} {
		if n != nil && *n < 0 {
			return fmt.Errorf("problem counts must not be negative: %w", apperrors.ErrInvalidInput)
		}
	}
	return nil
}

// GoalFields lists the columns SetField accepts.
var GoalFields = []string{"completed", "total_problems", "completed_problems", "tags", "details", "task", "subject"}

// SetField assigns one goal attribute from its textual form. tags takes a
// JSON array; completed accepts "true" or "1" and treats anything else as
// false.
func (g *Goal) SetField(field, value string) error {
	switch field {
	case "completed":
		v := strings.ToLower(strings.TrimSpace(value))
		g.Completed = v == "true" || v == "1"
	case "total_problems", "completed_problems":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", field, apperrors.ErrInvalidInput)
		}
		if n < 0 {
			return fmt.Errorf("%s must not be negative: %w", field, apperrors.ErrInvalidInput)
		}
		if field == "total_problems" {
			g.TotalProblems = &n
		} else {
			g.CompletedProblems = &n
		}
	case "tags":
		var tags []string
		if err := json.Unmarshal([]byte(value), &tags); err != nil {
			return fmt.Errorf("tags must be a JSON array of strings: %w", apperrors.ErrInvalidInput)
		}
		if tags == nil {
			tags = []string{}
		}
		g.Tags = tags
	case "details":
		g.Details = &value
	case "task":
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("goal task is required: %w", apperrors.ErrInvalidInput)
		}
		g.Task = value
	case "subject":
		g.Subject = &value
	default:
		return fmt.Errorf("goal field %q cannot be updated: %w", field, apperrors.ErrInvalidInput)
	}
	return nil
}

type DailySummary struct {
	Date    string
	Summary *string
}

func ValidateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("date %q must look like 2006-01-02: %w", date, apperrors.ErrInvalidInput)
	}
	return nil
}
