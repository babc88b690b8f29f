package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"contas/internal/core"
	"contas/internal/storage"
)

// GoalService manages financial goals and owns the progress recomputation
// triggered by transaction events.
type GoalService struct {
	store storage.Store
}

func NewGoalService(store storage.Store) *GoalService {
	return &GoalService{store: store}
}

// CreateGoalInput carries a new savings goal; TargetAmount is a decimal
// major-unit string.
type CreateGoalInput struct {
	Title        string
	Description  string
	TargetAmount string
	TargetDate   time.Time
}

func (s *GoalService) Create(ctx context.Context, in CreateGoalInput) (*core.FinancialGoal, error) {
	cents, err := core.ParseDecimalToCents(in.TargetAmount)
	if err != nil {
		return nil, err
	}
	goal := &core.FinancialGoal{
		Title:        in.Title,
		Description:  in.Description,
		TargetAmount: core.Money{Cents: cents},
		TargetDate:   core.StartOfDay(in.TargetDate),
		Status:       core.GoalInProgress,
	}
	if err := goal.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.CreateGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	return goal, nil
}

func (s *GoalService) Get(ctx context.Context, id int64) (*core.FinancialGoal, error) {
	return s.store.GetGoal(ctx, id)
}

func (s *GoalService) List(ctx context.Context) ([]core.FinancialGoal, error) {
	return s.store.ListGoals(ctx)
}

func (s *GoalService) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteGoal(ctx, id)
}

// Recompute re-derives a goal's accumulated amount from its linked
// transactions and updates the lifecycle status: COMPLETED once the target is
// reached, EXPIRED when the target date has passed without completion,
// IN_PROGRESS otherwise. Completion is terminal even past the target date.
func (s *GoalService) Recompute(ctx context.Context, goalID int64, now time.Time) (*core.FinancialGoal, error) {
	goal, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}

	sum, err := s.store.SumGoalContributions(ctx, goalID)
	if err != nil {
		return nil, err
	}

	status := core.GoalInProgress
	switch {
	case sum >= goal.TargetAmount.Cents:
		status = core.GoalCompleted
	case core.StartOfDay(now).After(goal.TargetDate):
		status = core.GoalExpired
	}

	if err := s.store.UpdateGoalProgress(ctx, goalID, sum, status); err != nil {
		return nil, err
	}

	goal.CurrentAmount = core.Money{Cents: sum}
	goal.Status = status

	slog.InfoContext(ctx, "Goal progress recomputed",
		"goal_id", goalID,
		"current_cents", sum,
		"target_cents", goal.TargetAmount.Cents,
		"progress_pct", goal.Progress(),
		"status", status)

	return goal, nil
}
