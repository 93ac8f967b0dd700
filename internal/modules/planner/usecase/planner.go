package usecase

import (
	"context"

	"studylog/internal/modules/planner/domain"
	plannerdto "studylog/internal/modules/planner/dto"
	plannerin "studylog/internal/modules/planner/port/in"
	"studylog/internal/modules/planner/service"
	"studylog/internal/platform/clock"
)

type Interactor struct {
	svc *service.PlannerService
}

func NewInteractor(svc *service.PlannerService) plannerin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) UpdateDailySummary(ctx context.Context, input plannerdto.DailySummaryInput) (plannerdto.DailySummaryOutput, error) {
	summary, err := i.svc.UpdateDailySummary(ctx, input.Date, input.Summary)
	if err != nil {
		return plannerdto.DailySummaryOutput{}, err
	}
	return plannerdto.DailySummaryOutput{Date: summary.Date, Summary: summary.Summary}, nil
}

func (i *Interactor) DailySummary(ctx context.Context, date string) (plannerdto.DailySummaryOutput, error) {
	summary, err := i.svc.DailySummary(ctx, date)
	if err != nil {
		return plannerdto.DailySummaryOutput{}, err
	}
	return plannerdto.DailySummaryOutput{Date: summary.Date, Summary: summary.Summary}, nil
}

func (i *Interactor) AddGoal(ctx context.Context, input plannerdto.AddGoalInput) (plannerdto.GoalOutput, error) {
	goal, err := i.svc.AddGoal(ctx, input.Date, domain.NewGoal{
		Task:              input.Task,
		Subject:           input.Subject,
		TotalProblems:     input.TotalProblems,
		CompletedProblems: input.CompletedProblems,
		Tags:              input.Tags,
		Details:           input.Details,
	})
	if err != nil {
		return plannerdto.GoalOutput{}, err
	}
	return toGoalOutput(goal), nil
}

func (i *Interactor) UpdateDailyGoals(ctx context.Context, input plannerdto.DailyGoalsInput) (plannerdto.DailyGoalsOutput, error) {
	entries := make([]domain.GoalUpsert, 0, len(input.Goals))
	for _, g := range input.Goals {
		entries = append(entries, domain.GoalUpsert{
			ID:                g.ID,
			Task:              g.Task,
			Completed:         g.Completed,
			Subject:           g.Subject,
			TotalProblems:     g.TotalProblems,
			CompletedProblems: g.CompletedProblems,
			Tags:              g.Tags,
			Details:           g.Details,
			CreatedAt:         g.CreatedAt,
		})
	}
	date, goals, err := i.svc.UpsertDailyGoals(ctx, input.Date, entries)
	if err != nil {
		return plannerdto.DailyGoalsOutput{}, err
	}
	out := plannerdto.DailyGoalsOutput{Date: date, Goals: make([]plannerdto.GoalOutput, 0, len(goals))}
	for _, goal := range goals {
		out.Goals = append(out.Goals, toGoalOutput(goal))
	}
	return out, nil
}

func (i *Interactor) GetGoal(ctx context.Context, id string) (plannerdto.GoalOutput, error) {
	goal, err := i.svc.GetGoal(ctx, id)
	if err != nil {
		return plannerdto.GoalOutput{}, err
	}
	return toGoalOutput(goal), nil
}

func (i *Interactor) UpdateGoal(ctx context.Context, input plannerdto.UpdateGoalInput) (plannerdto.GoalOutput, error) {
	goal, err := i.svc.UpdateGoal(ctx, input.ID, input.Field, input.Value)
	if err != nil {
		return plannerdto.GoalOutput{}, err
	}
	return toGoalOutput(goal), nil
}

func (i *Interactor) DeleteGoal(ctx context.Context, id string) error {
	return i.svc.DeleteGoal(ctx, id)
}

func (i *Interactor) Day(ctx context.Context, date string) (plannerdto.DayPlanOutput, error) {
	summary, err := i.svc.DailySummary(ctx, date)
	if err != nil {
		return plannerdto.DayPlanOutput{}, err
	}
	goals, err := i.svc.GoalsOn(ctx, summary.Date)
	if err != nil {
		return plannerdto.DayPlanOutput{}, err
	}
	out := plannerdto.DayPlanOutput{Date: summary.Date, Summary: summary.Summary, Goals: make([]plannerdto.GoalOutput, 0, len(goals))}
	for _, goal := range goals {
		out.Goals = append(out.Goals, toGoalOutput(goal))
	}
	return out, nil
}

func toGoalOutput(goal domain.Goal) plannerdto.GoalOutput {
	return plannerdto.GoalOutput{
		ID:                goal.ID,
		Date:              goal.Date,
		Task:              goal.Task,
		Completed:         goal.Completed,
		Subject:           goal.Subject,
		TotalProblems:     goal.TotalProblems,
		CompletedProblems: goal.CompletedProblems,
		Tags:              goal.Tags,
		Details:           goal.Details,
		CreatedAt:         clock.Format(goal.CreatedAt),
		UpdatedAt:         clock.Format(goal.UpdatedAt),
	}
}
