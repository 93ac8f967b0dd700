package domain_test

import (
	"errors"
	"testing"
	"time"

	"studylog/internal/modules/planner/domain"
	apperrors "studylog/internal/platform/errors"
)

func intPtr(n int) *int { return &n }

func TestNewGoalBuild(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	goal, err := domain.NewGoal{Task: " Read ch3 ", TotalProblems: intPtr(20)}.Build("g-1", "2026-03-01", now)
	if err != nil {
		t.Fatalf("build goal: %v", err)
	}
	if goal.Task != "Read ch3" || goal.Completed {
		t.Fatalf("unexpected goal %+v", goal)
	}
	if goal.CompletedProblems == nil || *goal.CompletedProblems != 0 {
		t.Fatalf("completed problems must default to 0 when a total is set")
	}
	if goal.Tags == nil || len(goal.Tags) != 0 {
		t.Fatalf("tags must default to an empty list")
	}

	plain, err := domain.NewGoal{Task: "Review"}.Build("g-2", "2026-03-01", now)
	if err != nil {
		t.Fatalf("build goal: %v", err)
	}
	if plain.CompletedProblems != nil {
		t.Fatalf("completed problems must stay unset without a total")
	}

	if _, err := (domain.NewGoal{Task: "  "}).Build("g-3", "2026-03-01", now); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("empty task must fail, got %v", err)
	}
	if _, err := (domain.NewGoal{Task: "x"}).Build("g-4", "March 1", now); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("bad date must fail, got %v", err)
	}
}

func TestGoalSetField(t *testing.T) {
	t.Parallel()
	goal := domain.Goal{ID: "g-1", Date: "2026-03-01", Task: "Read"}

	for _, value := range []string{"true", "1", "TRUE"} {
		goal.Completed = false
		if err := goal.SetField("completed", value); err != nil || !goal.Completed {
			t.Fatalf("completed=%s must set the flag: %v", value, err)
		}
	}
	if err := goal.SetField("completed", "yes"); err != nil || goal.Completed {
		t.Fatalf("other values mean not completed")
	}
	if err := goal.SetField("total_problems", "12"); err != nil || *goal.TotalProblems != 12 {
		t.Fatalf("total_problems: %v", err)
	}
	if err := goal.SetField("tags", `["math","#exam"]`); err != nil || len(goal.Tags) != 2 || goal.Tags[1] != "#exam" {
		t.Fatalf("tags: %v %v", err, goal.Tags)
	}

	for _, bad := range []struct{ field, value string }{
		{"completed_problems", "many"},
		{"total_problems", "-1"},
		{"tags", "math"},
		{"task", ""},
		{"date", "2026-03-02"},
	} {
		if err := goal.SetField(bad.field, bad.value); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("%s=%q must fail, got %v", bad.field, bad.value, err)
		}
	}
}
