package in

import (
	"context"

	plannerdto "studylog/internal/modules/planner/dto"
)

type Usecase interface {
	UpdateDailySummary(ctx context.Context, input plannerdto.DailySummaryInput) (plannerdto.DailySummaryOutput, error)
	DailySummary(ctx context.Context, date string) (plannerdto.DailySummaryOutput, error)
	AddGoal(ctx context.Context, input plannerdto.AddGoalInput) (plannerdto.GoalOutput, error)
	UpdateDailyGoals(ctx context.Context, input plannerdto.DailyGoalsInput) (plannerdto.DailyGoalsOutput, error)
	GetGoal(ctx context.Context, id string) (plannerdto.GoalOutput, error)
	UpdateGoal(ctx context.Context, input plannerdto.UpdateGoalInput) (plannerdto.GoalOutput, error)
	DeleteGoal(ctx context.Context, id string) error
	Day(ctx context.Context, date string) (plannerdto.DayPlanOutput, error)
}
