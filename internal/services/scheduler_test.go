package services

import (
	"context"
	"testing"
	"time"

	"contas/internal/core"
	"contas/internal/storage"
)

func newRecurring(t *testing.T, store storage.Store, nextDue time.Time, endDate *time.Time) *core.RecurringTransaction {
	t.Helper()
	rec := &core.RecurringTransaction{
		Description: "Aluguel",
		Amount:      core.Money{Cents: 120000},
		Type:        core.Expense,
		Frequency:   core.Monthly,
		StartDate:   nextDue,
		NextDueDate: nextDue,
		EndDate:     endDate,
		Active:      true,
	}
	if _, err := store.CreateRecurring(context.Background(), rec); err != nil {
		t.Fatalf("create recurring: %v", err)
	}
	return rec
}

func TestProcessDueMaterializesAndAdvances(t *testing.T) {
	store := storage.NewMemoryStore()
	sched := NewRecurringScheduler(store)
	ctx := context.Background()

	rec := newRecurring(t, store, date(2024, time.January, 15), nil)

	res, err := sched.ProcessDue(ctx, date(2024, time.January, 15))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Processed != 1 || res.Created != 1 || res.Failed != 0 {
		t.Fatalf("result = %+v", res)
	}

	txs := allTransactions(t, store)
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	tx := txs[0]
	if tx.RecurringID == nil || *tx.RecurringID != rec.ID {
		t.Fatal("materialized transaction not linked to its series")
	}
	if tx.PeriodKey != "2024-01" {
		t.Fatalf("period key = %q, want 2024-01", tx.PeriodKey)
	}
	if tx.Amount.Cents != 120000 || tx.Type != core.Expense {
		t.Fatalf("materialized transaction = %+v", tx)
	}

	got, _ := store.GetRecurring(ctx, rec.ID)
	if !got.NextDueDate.Equal(date(2024, time.February, 15)) {
		t.Fatalf("cursor = %s, want 2024-02-15", got.NextDueDate)
	}
}

func TestProcessDueIsIdempotent(t *testing.T) {
	store := storage.NewMemoryStore()
	sched := NewRecurringScheduler(store)
	ctx := context.Background()

	newRecurring(t, store, date(2024, time.January, 15), nil)

	if _, err := sched.ProcessDue(ctx, date(2024, time.January, 15)); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	// Cursor moved to February; a second January pass selects nothing.
	res, err := sched.ProcessDue(ctx, date(2024, time.January, 31))
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if res.Processed != 0 || res.Created != 0 {
		t.Fatalf("second pass result = %+v", res)
	}
	if txs := allTransactions(t, store); len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
}

func TestProcessDueSkipsMaterializedPeriod(t *testing.T) {
	store := storage.NewMemoryStore()
	sched := NewRecurringScheduler(store)
	ctx := context.Background()

	rec := newRecurring(t, store, date(2024, time.March, 5), nil)

	// The period is already covered by a manually recorded transaction.
	recID := rec.ID
	manual := &core.Transaction{
		Description: "Aluguel",
		Amount:      core.Money{Cents: 120000},
		Type:        core.Expense,
		Date:        date(2024, time.March, 1),
		RecurringID: &recID,
		PeriodKey:   "2024-03",
	}
	if _, err := store.CreateTransaction(ctx, manual); err != nil {
		t.Fatalf("create manual transaction: %v", err)
	}

	res, err := sched.ProcessDue(ctx, date(2024, time.March, 5))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Processed != 1 || res.Created != 0 {
		t.Fatalf("result = %+v", res)
	}
	if txs := allTransactions(t, store); len(txs) != 1 {
		t.Fatalf("duplicate materialization: %d transactions", len(txs))
	}

	// The cursor still advances even when nothing was created.
	got, _ := store.GetRecurring(ctx, rec.ID)
	if !got.NextDueDate.Equal(date(2024, time.April, 5)) {
		t.Fatalf("cursor = %s, want 2024-04-05", got.NextDueDate)
	}
}

func TestProcessDueClampsMonthEnd(t *testing.T) {
	store := storage.NewMemoryStore()
	sched := NewRecurringScheduler(store)
	ctx := context.Background()

	rec := newRecurring(t, store, date(2024, time.January, 31), nil)

	if _, err := sched.ProcessDue(ctx, date(2024, time.January, 31)); err != nil {
		t.Fatalf("process: %v", err)
	}

	got, _ := store.GetRecurring(ctx, rec.ID)
	if !got.NextDueDate.Equal(date(2024, time.February, 29)) {
		t.Fatalf("cursor = %s, want 2024-02-29", got.NextDueDate)
	}
}

func TestProcessDueDeactivatesAtEndDate(t *testing.T) {
	store := storage.NewMemoryStore()
	sched := NewRecurringScheduler(store)
	ctx := context.Background()

	end := date(2024, time.April, 1)
	rec := newRecurring(t, store, date(2024, time.March, 10), &end)

	res, err := sched.ProcessDue(ctx, date(2024, time.March, 10))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	// The due period still materializes; only the advance is replaced by
	// deactivation.
	if res.Created != 1 {
		t.Fatalf("result = %+v", res)
	}

	got, _ := store.GetRecurring(ctx, rec.ID)
	if got.Active {
		t.Fatal("series should be deactivated")
	}
	if !got.NextDueDate.Equal(date(2024, time.March, 10)) {
		t.Fatalf("cursor moved on deactivation: %s", got.NextDueDate)
	}

	// Deactivation is terminal: further passes never resurrect the series.
	res, err = sched.ProcessDue(ctx, date(2024, time.June, 1))
	if err != nil {
		t.Fatalf("later pass: %v", err)
	}
	if res.Processed != 0 {
		t.Fatalf("deactivated series selected again: %+v", res)
	}
}

func TestProcessDueIgnoresFutureSeries(t *testing.T) {
	store := storage.NewMemoryStore()
	sched := NewRecurringScheduler(store)

	newRecurring(t, store, date(2024, time.July, 1), nil)

	res, err := sched.ProcessDue(context.Background(), date(2024, time.June, 30))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Processed != 0 || res.Created != 0 {
		t.Fatalf("future series processed: %+v", res)
	}
}

func TestProcessDueCatchesUpOnePeriodPerPass(t *testing.T) {
	store := storage.NewMemoryStore()
	sched := NewRecurringScheduler(store)
	ctx := context.Background()

	rec := newRecurring(t, store, date(2024, time.January, 10), nil)
	now := date(2024, time.March, 20)

	for i := 0; i < 3; i++ {
		if _, err := sched.ProcessDue(ctx, now); err != nil {
			t.Fatalf("pass %d: %v", i+1, err)
		}
	}

	txs := allTransactions(t, store)
	if len(txs) != 3 {
		t.Fatalf("got %d transactions, want 3", len(txs))
	}
	periods := map[string]bool{}
	for _, tx := range txs {
		periods[tx.PeriodKey] = true
	}
	for _, want := range []string{"2024-01", "2024-02", "2024-03"} {
		if !periods[want] {
			t.Fatalf("missing period %s", want)
		}
	}

	got, _ := store.GetRecurring(ctx, rec.ID)
	if !got.NextDueDate.Equal(date(2024, time.April, 10)) {
		t.Fatalf("cursor = %s, want 2024-04-10", got.NextDueDate)
	}
}
