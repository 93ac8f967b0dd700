package service

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"studylog/internal/modules/planner/domain"
	plannerout "studylog/internal/modules/planner/port/out"
	"studylog/internal/platform/clock"
	"studylog/internal/platform/id"
	"studylog/internal/platform/logging"
	"studylog/internal/platform/tx"
)

const (
	descDailySummary = "Before daily summary update."
	descAddGoal      = "Before adding a goal to a specific date."
	descDailyGoals   = "Before daily goal update."
	descUpdateGoal   = "Before updating goal by global ID."
	descDeleteGoal   = "Before deleting goal by global ID."
)

type PlannerService struct {
	clock     clock.Clock
	idGen     id.Generator
	goals     plannerout.GoalStore
	summaries plannerout.SummaryStore
	tx        tx.Manager
	logger    hclog.Logger
}

func NewPlannerService(clk clock.Clock, idGen id.Generator, goals plannerout.GoalStore, summaries plannerout.SummaryStore, txm tx.Manager, logger hclog.Logger) *PlannerService {
	if txm == nil {
		txm = tx.NoopManager{}
	}
	return &PlannerService{
		clock:     clk,
		idGen:     idGen,
		goals:     goals,
		summaries: summaries,
		tx:        txm,
		logger:    logging.OrNull(logger).Named("planner"),
	}
}

// dateOrToday defaults an empty date to the current local day.
func (s *PlannerService) dateOrToday(date string) (string, error) {
	if date == "" {
		return clock.Date(s.clock.Now()), nil
	}
	return date, domain.ValidateDate(date)
}

func (s *PlannerService) UpdateDailySummary(ctx context.Context, date string, text *string) (domain.DailySummary, error) {
	date, err := s.dateOrToday(date)
	if err != nil {
		return domain.DailySummary{}, err
	}
	summary := domain.DailySummary{Date: date, Summary: text}
	err = s.tx.Within(ctx, descDailySummary, func(ctx context.Context) error {
		return s.summaries.Upsert(ctx, summary)
	})
	if err != nil {
		return domain.DailySummary{}, err
	}
	s.logger.Info("daily summary updated", "date", date)
	return summary, nil
}

func (s *PlannerService) DailySummary(ctx context.Context, date string) (domain.DailySummary, error) {
	date, err := s.dateOrToday(date)
	if err != nil {
		return domain.DailySummary{}, err
	}
	summary, ok, err := s.summaries.Get(ctx, date)
	if err != nil {
		return domain.DailySummary{}, err
	}
	if !ok {
		return domain.DailySummary{Date: date}, nil
	}
	return summary, nil
}

func (s *PlannerService) AddGoal(ctx context.Context, date string, request domain.NewGoal) (domain.Goal, error) {
	date, err := s.dateOrToday(date)
	if err != nil {
		return domain.Goal{}, err
	}
	goal, err := request.Build(s.idGen.New(), date, s.clock.Now())
	if err != nil {
		return domain.Goal{}, err
	}
	err = s.tx.Within(ctx, descAddGoal, func(ctx context.Context) error {
		return s.goals.Insert(ctx, goal)
	})
	if err != nil {
		return domain.Goal{}, err
	}
	s.logger.Info("goal added", "id", goal.ID, "date", date)
	return goal, nil
}

// UpsertDailyGoals writes a whole goal list for date. Entries are validated
// before the snapshot is taken; the batch commits or fails as one.
func (s *PlannerService) UpsertDailyGoals(ctx context.Context, date string, entries []domain.GoalUpsert) (string, []domain.Goal, error) {
	date, err := s.dateOrToday(date)
	if err != nil {
		return "", nil, err
	}
	now := s.clock.Now()
	goals := make([]domain.Goal, 0, len(entries))
	for _, entry := range entries {
		goal, err := entry.Build(s.idGen.New, date, now)
		if err != nil {
			return "", nil, err
		}
		goals = append(goals, goal)
	}
	err = s.tx.Within(ctx, descDailyGoals, func(ctx context.Context) error {
		return s.goals.UpsertAll(ctx, goals)
	})
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("daily goals written", "date", date, "count", len(goals))
	return date, goals, nil
}

func (s *PlannerService) GetGoal(ctx context.Context, id string) (domain.Goal, error) {
	return s.goals.FindByID(ctx, id)
}

func (s *PlannerService) UpdateGoal(ctx context.Context, id, field, value string) (domain.Goal, error) {
	goal, err := s.goals.FindByID(ctx, id)
	if err != nil {
		return domain.Goal{}, err
	}
	if err := goal.SetField(field, value); err != nil {
		return domain.Goal{}, err
	}
	goal.UpdatedAt = s.clock.Now()
	err = s.tx.Within(ctx, descUpdateGoal, func(ctx context.Context) error {
		return s.goals.Update(ctx, goal)
	})
	if err != nil {
		return domain.Goal{}, err
	}
	s.logger.Info("goal updated", "id", id, "field", field)
	return goal, nil
}

func (s *PlannerService) DeleteGoal(ctx context.Context, id string) error {
	if _, err := s.goals.FindByID(ctx, id); err != nil {
		return err
	}
	err := s.tx.Within(ctx, descDeleteGoal, func(ctx context.Context) error {
		return s.goals.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("goal deleted", "id", id)
	return nil
}

func (s *PlannerService) GoalsOn(ctx context.Context, date string) ([]domain.Goal, error) {
	date, err := s.dateOrToday(date)
	if err != nil {
		return nil, err
	}
	return s.goals.ListByDate(ctx, date)
}
