package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"contas/internal/core"
	"contas/internal/storage"
)

// SchedulerResult reports one scheduler pass. Processed counts every selected
// series, Created the transactions actually inserted; the caller needs both
// to tell "nothing due" apart from "everything due but already materialized".
type SchedulerResult struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Failed    int `json:"failed"`
}

// RecurringScheduler materializes due recurring expenses into transactions
// and advances each series' cursor. It is safe to invoke repeatedly: a period
// that already has a materialized transaction is never created twice.
type RecurringScheduler struct {
	store storage.Store
}

func NewRecurringScheduler(store storage.Store) *RecurringScheduler {
	return &RecurringScheduler{store: store}
}

// ProcessDue runs one pass over every active series whose cursor is on or
// before the start of now's day.
//
// Per series: create the period's transaction if missing, then advance the
// cursor one calendar month with the day clamped to the last valid day of the
// target month (2024-01-31 advances to 2024-02-29). If the candidate cursor
// would land on or after the series' end date, the series is deactivated
// instead and its cursor left untouched. Each series' transaction insert and
// cursor update commit as one atomic unit; a failing series is logged and
// counted, never aborting the rest of the batch.
func (p *RecurringScheduler) ProcessDue(ctx context.Context, now time.Time) (SchedulerResult, error) {
	var res SchedulerResult

	cutoff := core.StartOfDay(now)
	due, err := p.store.DueRecurring(ctx, cutoff)
	if err != nil {
		return res, fmt.Errorf("select due recurring transactions: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring transactions",
		"due", len(due),
		"as_of", cutoff.Format("2006-01-02"))

	for _, rec := range due {
		created, err := p.processOne(ctx, rec)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to process recurring transaction",
				"id", rec.ID,
				"description", rec.Description,
				"error", err)
			res.Failed++
			continue
		}
		res.Processed++
		if created {
			res.Created++
		}
	}

	slog.InfoContext(ctx, "Recurring transaction processing complete",
		"processed", res.Processed,
		"created", res.Created,
		"failed", res.Failed)

	return res, nil
}

func (p *RecurringScheduler) processOne(ctx context.Context, rec core.RecurringTransaction) (bool, error) {
	periodKey := core.PeriodKey(rec.NextDueDate)

	exists, err := p.store.HasTransactionForPeriod(ctx, rec.ID, periodKey)
	if err != nil {
		return false, fmt.Errorf("check period %s: %w", periodKey, err)
	}

	adv := storage.RecurringAdvance{RecurringID: rec.ID}
	if !exists {
		recID := rec.ID
		adv.Transaction = &core.Transaction{
			Description: rec.Description,
			Amount:      rec.Amount,
			Type:        rec.Type,
			Date:        core.StartOfDay(rec.NextDueDate),
			CategoryID:  rec.CategoryID,
			RecurringID: &recID,
			PeriodKey:   periodKey,
		}
	}

	candidate := core.AddMonthClamped(core.StartOfDay(rec.NextDueDate))
	if rec.EndDate != nil && !candidate.Before(core.StartOfDay(*rec.EndDate)) {
		// The next occurrence would fall on or past the end boundary:
		// deactivate and stop moving the cursor. Deactivation is terminal.
		adv.Deactivate = true
	} else {
		adv.NextDueDate = &candidate
	}

	created, err := p.store.ApplyRecurringAdvance(ctx, adv)
	if err != nil {
		return false, fmt.Errorf("apply advance: %w", err)
	}

	if adv.Deactivate {
		slog.InfoContext(ctx, "Recurring transaction reached its end date",
			"id", rec.ID,
			"description", rec.Description,
			"end_date", rec.EndDate.Format("2006-01-02"))
	} else if created {
		slog.InfoContext(ctx, "Materialized recurring transaction",
			"recurring_id", rec.ID,
			"description", rec.Description,
			"amount_cents", rec.Amount.Cents,
			"period", periodKey,
			"next_due", candidate.Format("2006-01-02"))
	}

	return created, nil
}
