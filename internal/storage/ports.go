// Package storage provides the persistent store behind the finance tracker.
//
// Store is the port consumed by the service layer. SQLiteRepository is the
// production implementation; MemoryStore backs unit tests.
package storage

import (
	"context"
	"errors"
	"time"

	"contas/internal/core"
)

// ErrNotFound is returned when an entity id does not exist.
var ErrNotFound = errors.New("not found")

// TransactionFilter is the typed query object for transaction range reads.
// Every fetch passes its resolved parameters explicitly; there is no implicit
// refresh state.
type TransactionFilter struct {
	PeriodStart time.Time // inclusive
	PeriodEnd   time.Time // exclusive
	SettledOnly bool
	CategoryID  *int64
	Limit       int // 0 means no limit
}

// CategoryWithCount pairs a category with the number of transactions
// referencing it.
type CategoryWithCount struct {
	Category core.Category
	Count    int64
}

// RecurringAdvance is the outcome of one scheduler pass over a single series,
// persisted as a failure-atomic unit: the materialized transaction (if any)
// and the cursor/active update commit together or not at all.
type RecurringAdvance struct {
	RecurringID int64
	// Transaction to insert, nil when the due period is already materialized.
	Transaction *core.Transaction
	// NextDueDate is the new cursor value, nil when the cursor stays put.
	NextDueDate *time.Time
	Deactivate  bool
}

type Store interface {
	// Categories. Deleting a category nulls the category reference on
	// transactions and recurring series rather than cascading.
	CreateCategory(ctx context.Context, c *core.Category) (int64, error)
	GetCategory(ctx context.Context, id int64) (*core.Category, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	TopCategories(ctx context.Context, limit int) ([]CategoryWithCount, error)

	// Transactions.
	CreateTransaction(ctx context.Context, t *core.Transaction) (int64, error)
	GetTransaction(ctx context.Context, id int64) (*core.Transaction, error)
	UpdateTransaction(ctx context.Context, t *core.Transaction) error
	SetTransactionSettled(ctx context.Context, id int64, settled bool) error
	DeleteTransaction(ctx context.Context, id int64) error
	ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error)
	// TransactionDateBounds returns the earliest and latest transaction
	// dates, or ErrNotFound when the ledger is empty.
	TransactionDateBounds(ctx context.Context) (first, last time.Time, err error)

	// Installment plans. CreateInstallmentPlan persists the plan, all of its
	// installments, and the first realized transaction as one failure-atomic
	// unit; partial creation never becomes visible.
	CreateInstallmentPlan(ctx context.Context, plan *core.InstallmentPlan, installments []core.Installment, first *core.Transaction) error
	GetInstallmentPlan(ctx context.Context, id int64) (*core.InstallmentPlan, error)
	ListInstallments(ctx context.Context, planID int64) ([]core.Installment, error)

	// Recurring series.
	CreateRecurring(ctx context.Context, r *core.RecurringTransaction) (int64, error)
	GetRecurring(ctx context.Context, id int64) (*core.RecurringTransaction, error)
	ListRecurring(ctx context.Context, activeOnly bool) ([]core.RecurringTransaction, error)
	DeactivateRecurring(ctx context.Context, id int64) error
	// DueRecurring returns active series whose cursor is on or before asOf.
	DueRecurring(ctx context.Context, asOf time.Time) ([]core.RecurringTransaction, error)
	// HasTransactionForPeriod is the scheduler's idempotence guard: it
	// reports whether the series already materialized a transaction for the
	// given period key.
	HasTransactionForPeriod(ctx context.Context, recurringID int64, periodKey string) (bool, error)
	// ApplyRecurringAdvance commits one scheduler outcome atomically and
	// reports whether a transaction was actually inserted (false when the
	// period-uniqueness constraint swallowed a concurrent duplicate).
	ApplyRecurringAdvance(ctx context.Context, adv RecurringAdvance) (bool, error)

	// Financial goals.
	CreateGoal(ctx context.Context, g *core.FinancialGoal) (int64, error)
	GetGoal(ctx context.Context, id int64) (*core.FinancialGoal, error)
	ListGoals(ctx context.Context) ([]core.FinancialGoal, error)
	DeleteGoal(ctx context.Context, id int64) error
	UpdateGoalProgress(ctx context.Context, id int64, currentCents int64, status core.GoalStatus) error
	// SumGoalContributions totals the transactions linked to a goal.
	SumGoalContributions(ctx context.Context, goalID int64) (int64, error)

	Close() error
}
