package in

import (
	"context"

	plannerdto "studylog/internal/modules/planner/dto"
	plannerin "studylog/internal/modules/planner/port/in"
)

type CLIHandler struct {
	usecase plannerin.Usecase
}

func NewCLIHandler(usecase plannerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Day(ctx context.Context, date string) (plannerdto.DayPlanOutput, error) {
	return h.usecase.Day(ctx, date)
}

func (h CLIHandler) AddGoal(ctx context.Context, input plannerdto.AddGoalInput) (plannerdto.GoalOutput, error) {
	return h.usecase.AddGoal(ctx, input)
}

func (h CLIHandler) SetSummary(ctx context.Context, date, text string) (plannerdto.DailySummaryOutput, error) {
	return h.usecase.UpdateDailySummary(ctx, plannerdto.DailySummaryInput{Date: date, Summary: &text})
}
