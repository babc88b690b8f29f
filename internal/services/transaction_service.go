package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"contas/internal/core"
	"contas/internal/storage"
)

// EventPublisher publishes transaction lifecycle events for asynchronous
// consumers (the goal worker). A nil publisher disables eventing.
type EventPublisher interface {
	PublishTransactionCreated(ctx context.Context, id int64, goalID *int64) error
	PublishTransactionDeleted(ctx context.Context, id int64, goalID *int64) error
}

// CreateTransactionInput is the transaction-creation entry point payload.
// Amount is a decimal major-unit string; everything past the boundary is
// integer cents.
type CreateTransactionInput struct {
	Description  string
	Amount       string
	Type         core.TransactionType
	Date         time.Time
	CategoryID   *int64
	GoalID       *int64
	Installments int  // 0 or 1 means a plain transaction
	IsRecurring  bool // also register a monthly recurring series
	EndDate      *time.Time
}

// TransactionService orchestrates transaction operations across the store,
// the installment splitter, and the event pipeline.
type TransactionService struct {
	store     storage.Store
	splitter  *InstallmentSplitter
	publisher EventPublisher
}

func NewTransactionService(store storage.Store, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		store:     store,
		splitter:  NewInstallmentSplitter(store),
		publisher: publisher,
	}
}

// Create records a transaction. Installments > 1 routes through the
// installment splitter; IsRecurring additionally registers a monthly series
// whose next occurrence follows the created transaction's month.
func (s *TransactionService) Create(ctx context.Context, in CreateTransactionInput) (*core.Transaction, error) {
	cents, err := core.ParseDecimalToCents(in.Amount)
	if err != nil {
		return nil, err
	}
	if in.Installments == 0 {
		in.Installments = 1
	}

	if in.Installments > 1 {
		_, first, err := s.splitter.Split(ctx, SplitInput{
			Description:  in.Description,
			TotalCents:   cents,
			Installments: in.Installments,
			FirstDueDate: in.Date,
			Type:         in.Type,
			CategoryID:   in.CategoryID,
		})
		if err != nil {
			return nil, err
		}
		s.publishCreated(ctx, first)
		return first, nil
	}

	tx := &core.Transaction{
		Description: in.Description,
		Amount:      core.Money{Cents: cents},
		Type:        in.Type,
		Date:        core.StartOfDay(in.Date),
		CategoryID:  in.CategoryID,
		GoalID:      in.GoalID,
	}

	if in.IsRecurring {
		rec, err := s.registerRecurring(ctx, in, cents)
		if err != nil {
			return nil, err
		}
		// The manual transaction covers the series' first period; link it so
		// the scheduler's idempotence guard sees the period as materialized.
		tx.RecurringID = &rec.ID
		tx.PeriodKey = core.PeriodKey(tx.Date)
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	s.publishCreated(ctx, tx)
	return tx, nil
}

// registerRecurring creates the monthly series behind a transaction marked as
// recurring. The cursor starts at the month after the transaction date; the
// transaction itself is the first occurrence.
func (s *TransactionService) registerRecurring(ctx context.Context, in CreateTransactionInput, cents int64) (*core.RecurringTransaction, error) {
	start := core.StartOfDay(in.Date)
	rec := &core.RecurringTransaction{
		Description: in.Description,
		Amount:      core.Money{Cents: cents},
		Type:        in.Type,
		CategoryID:  in.CategoryID,
		Frequency:   core.Monthly,
		StartDate:   start,
		NextDueDate: core.AddMonthClamped(start),
		EndDate:     in.EndDate,
		Active:      true,
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.CreateRecurring(ctx, rec); err != nil {
		return nil, fmt.Errorf("register recurring series: %w", err)
	}
	return rec, nil
}

// UpdateTransactionInput carries an edit to an existing transaction. Plan and
// recurring links are never editable.
type UpdateTransactionInput struct {
	Description string
	Amount      string
	Type        core.TransactionType
	Date        time.Time
	CategoryID  *int64
	GoalID      *int64
}

func (s *TransactionService) Update(ctx context.Context, id int64, in UpdateTransactionInput) (*core.Transaction, error) {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	cents, err := core.ParseDecimalToCents(in.Amount)
	if err != nil {
		return nil, err
	}

	tx.Description = in.Description
	tx.Amount = core.Money{Cents: cents}
	tx.Type = in.Type
	tx.Date = core.StartOfDay(in.Date)
	tx.CategoryID = in.CategoryID
	tx.GoalID = in.GoalID

	if err := tx.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}
	s.publishCreated(ctx, tx)
	return tx, nil
}

// ToggleSettled flips the settled flag and returns the new value. Settlement
// is independent of type, amount, and date.
func (s *TransactionService) ToggleSettled(ctx context.Context, id int64) (bool, error) {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return false, err
	}
	settled := !tx.Settled
	if err := s.store.SetTransactionSettled(ctx, id, settled); err != nil {
		return false, err
	}
	slog.InfoContext(ctx, "Transaction settlement toggled", "id", id, "settled", settled)
	return settled, nil
}

// Delete removes a transaction. The installment plan or recurring series that
// produced it is deliberately left untouched.
func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	if s.publisher != nil {
		if err := s.publisher.PublishTransactionDeleted(ctx, id, tx.GoalID); err != nil {
			// The delete already committed; eventing is best-effort.
			slog.ErrorContext(ctx, "Failed to publish transaction deleted event", "id", id, "error", err)
		}
	}
	return nil
}

func (s *TransactionService) List(ctx context.Context, f storage.TransactionFilter) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, f)
}

// Periods returns the date range covered by the ledger, falling back to the
// trailing twelve months when no transactions exist.
func (s *TransactionService) Periods(ctx context.Context, now time.Time) (time.Time, time.Time, error) {
	first, last, err := s.store.TransactionDateBounds(ctx)
	if err == storage.ErrNotFound {
		end := core.StartOfDay(now)
		return end.AddDate(0, -11, 0), end, nil
	}
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return first, last, nil
}

// Summary is the monthly dashboard aggregate.
type Summary struct {
	Balance            int64                       `json:"balance"`
	TotalIncome        int64                       `json:"totalIncome"`
	TotalExpense       int64                       `json:"totalExpense"`
	RecentTransactions []core.Transaction          `json:"recentTransactions"`
	TopCategories      []storage.CategoryWithCount `json:"topCategories"`
}

const summaryRecentLimit = 5

// Summarize aggregates the transactions matching the filter: income and
// expense totals, their balance, the most recent entries, and the most used
// categories.
func (s *TransactionService) Summarize(ctx context.Context, f storage.TransactionFilter) (*Summary, error) {
	txs, err := s.store.ListTransactions(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	sum := &Summary{RecentTransactions: []core.Transaction{}}
	for _, t := range txs {
		switch t.Type {
		case core.Income:
			sum.TotalIncome += t.Amount.Cents
		case core.Expense:
			sum.TotalExpense += t.Amount.Cents
		}
	}
	sum.Balance = sum.TotalIncome - sum.TotalExpense

	if len(txs) > summaryRecentLimit {
		txs = txs[:summaryRecentLimit]
	}
	sum.RecentTransactions = txs

	top, err := s.store.TopCategories(ctx, summaryRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	sum.TopCategories = top

	return sum, nil
}

func (s *TransactionService) publishCreated(ctx context.Context, tx *core.Transaction) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionCreated(ctx, tx.ID, tx.GoalID); err != nil {
		// The write already committed; eventing is best-effort.
		slog.ErrorContext(ctx, "Failed to publish transaction created event",
			"id", tx.ID, "error", err)
	}
}
