// Package worker implements the asynchronous goal-progress worker. It
// consumes transaction events and re-derives the progress and lifecycle
// status of the financial goals those transactions contribute to.
package worker

import (
	"context"
	"fmt"
	"time"

	"contas/internal/amqp"
	"contas/internal/log"
	"contas/internal/services"
	"contas/internal/storage"
)

type GoalWorker struct {
	store storage.Store
	goals *services.GoalService
	log   *log.Logger
}

func NewGoalWorker(store storage.Store, goals *services.GoalService) *GoalWorker {
	return &GoalWorker{
		store: store,
		goals: goals,
		log:   log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker),
	}
}

// HandleTransactionEvent processes a single transaction event. Events without
// a goal link are acknowledged without work; unknown goals (deleted between
// publish and consume) are treated the same way.
func (w *GoalWorker) HandleTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	w.log.InfoContext(ctx, "Processing transaction event",
		"kind", event.Kind,
		log.FieldTransactionID, event.TransactionID)

	if event.GoalID == nil {
		w.log.DebugContext(ctx, "Event carries no goal link, skipping",
			log.FieldTransactionID, event.TransactionID)
		return nil
	}

	goal, err := w.goals.Recompute(ctx, *event.GoalID, time.Now())
	if err == storage.ErrNotFound {
		w.log.WarnContext(ctx, "Goal no longer exists, dropping event",
			log.FieldGoalID, *event.GoalID,
			log.FieldTransactionID, event.TransactionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("recompute goal %d: %w", *event.GoalID, err)
	}

	w.log.InfoContext(ctx, "Goal progress recomputed",
		log.FieldGoalID, goal.ID,
		"current_cents", goal.CurrentAmount.Cents,
		"target_cents", goal.TargetAmount.Cents,
		"status", string(goal.Status))

	return nil
}

// StartupReconcile re-derives every goal at worker startup. It recovers from
// events missed while the worker was down.
func (w *GoalWorker) StartupReconcile(ctx context.Context) error {
	goals, err := w.store.ListGoals(ctx)
	if err != nil {
		return fmt.Errorf("list goals for startup reconcile: %w", err)
	}

	if len(goals) == 0 {
		w.log.InfoContext(ctx, "No goals found on startup")
		return nil
	}

	w.log.InfoContext(ctx, "Reconciling goals on startup", "count", len(goals))

	successCount := 0
	errorCount := 0
	now := time.Now()

	for _, g := range goals {
		if _, err := w.goals.Recompute(ctx, g.ID, now); err != nil {
			w.log.ErrorContext(ctx, "Failed to reconcile goal during startup",
				log.FieldGoalID, g.ID, log.FieldError, err.Error())
			errorCount++
			continue
		}
		successCount++
	}

	w.log.InfoContext(ctx, "Startup reconcile completed",
		"total", len(goals),
		"reconciled", successCount,
		"errors", errorCount)

	return nil
}
