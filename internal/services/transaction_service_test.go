package services

import (
	"context"
	"testing"
	"time"

	"contas/internal/core"
	"contas/internal/storage"
)

type fakePublisher struct {
	created []int64
	deleted []int64
}

func (f *fakePublisher) PublishTransactionCreated(_ context.Context, id int64, _ *int64) error {
	f.created = append(f.created, id)
	return nil
}

func (f *fakePublisher) PublishTransactionDeleted(_ context.Context, id int64, _ *int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestCreatePlainTransaction(t *testing.T) {
	store := storage.NewMemoryStore()
	pub := &fakePublisher{}
	svc := NewTransactionService(store, pub)

	tx, err := svc.Create(context.Background(), CreateTransactionInput{
		Description: "Salario",
		Amount:      "3500,00",
		Type:        core.Income,
		Date:        time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tx.Amount.Cents != 350000 {
		t.Fatalf("amount = %d, want 350000", tx.Amount.Cents)
	}
	if !tx.Date.Equal(date(2024, time.March, 5)) {
		t.Fatalf("date not normalized to start of day: %s", tx.Date)
	}
	if len(pub.created) != 1 || pub.created[0] != tx.ID {
		t.Fatalf("created event not published: %+v", pub.created)
	}
}

func TestCreateRejectsBadAmount(t *testing.T) {
	svc := NewTransactionService(storage.NewMemoryStore(), nil)

	for _, amount := range []string{"", "abc", "-5", "1.2.3"} {
		_, err := svc.Create(context.Background(), CreateTransactionInput{
			Description: "x",
			Amount:      amount,
			Type:        core.Expense,
			Date:        date(2024, time.March, 5),
		})
		if err == nil {
			t.Fatalf("amount %q accepted", amount)
		}
	}
}

func TestCreateRoutesInstallments(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewTransactionService(store, nil)

	tx, err := svc.Create(context.Background(), CreateTransactionInput{
		Description:  "Geladeira",
		Amount:       "10.00",
		Type:         core.Expense,
		Date:         date(2024, time.April, 1),
		Installments: 3,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tx.Description != "Geladeira (1/3)" {
		t.Fatalf("description = %q", tx.Description)
	}
	if tx.Amount.Cents != 333 {
		t.Fatalf("first installment amount = %d, want 333", tx.Amount.Cents)
	}
}

func TestCreateRecurringLinksFirstPeriod(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewTransactionService(store, nil)
	sched := NewRecurringScheduler(store)
	ctx := context.Background()

	tx, err := svc.Create(ctx, CreateTransactionInput{
		Description: "Academia",
		Amount:      "89.90",
		Type:        core.Expense,
		Date:        date(2024, time.March, 10),
		IsRecurring: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tx.RecurringID == nil {
		t.Fatal("transaction not linked to its series")
	}
	if tx.PeriodKey != "2024-03" {
		t.Fatalf("period key = %q", tx.PeriodKey)
	}

	rec, err := store.GetRecurring(ctx, *tx.RecurringID)
	if err != nil {
		t.Fatalf("get recurring: %v", err)
	}
	// The manual transaction covers March; the cursor starts at April.
	if !rec.NextDueDate.Equal(date(2024, time.April, 10)) {
		t.Fatalf("cursor = %s, want 2024-04-10", rec.NextDueDate)
	}

	// A March scheduler pass finds nothing due, so no duplicate appears.
	res, err := sched.ProcessDue(ctx, date(2024, time.March, 31))
	if err != nil {
		t.Fatalf("march pass: %v", err)
	}
	if res.Created != 0 {
		t.Fatalf("march pass created %d", res.Created)
	}

	// April materializes the second occurrence.
	res, err = sched.ProcessDue(ctx, date(2024, time.April, 10))
	if err != nil {
		t.Fatalf("april pass: %v", err)
	}
	if res.Created != 1 {
		t.Fatalf("april pass created %d, want 1", res.Created)
	}
	if txs := allTransactions(t, store); len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}
}

func TestToggleSettled(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewTransactionService(store, nil)
	ctx := context.Background()

	tx, err := svc.Create(ctx, CreateTransactionInput{
		Description: "Luz",
		Amount:      "200",
		Type:        core.Expense,
		Date:        date(2024, time.May, 2),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	settled, err := svc.ToggleSettled(ctx, tx.ID)
	if err != nil || !settled {
		t.Fatalf("first toggle = %v, %v", settled, err)
	}
	settled, err = svc.ToggleSettled(ctx, tx.ID)
	if err != nil || settled {
		t.Fatalf("second toggle = %v, %v", settled, err)
	}

	if _, err := svc.ToggleSettled(ctx, 9999); err != storage.ErrNotFound {
		t.Fatalf("missing id: got %v, want ErrNotFound", err)
	}
}

func TestDeletePublishesEvent(t *testing.T) {
	store := storage.NewMemoryStore()
	pub := &fakePublisher{}
	svc := NewTransactionService(store, pub)
	ctx := context.Background()

	tx, err := svc.Create(ctx, CreateTransactionInput{
		Description: "Mercado",
		Amount:      "50",
		Type:        core.Expense,
		Date:        date(2024, time.May, 2),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(pub.deleted) != 1 || pub.deleted[0] != tx.ID {
		t.Fatalf("deleted event not published: %+v", pub.deleted)
	}
	if _, err := store.GetTransaction(ctx, tx.ID); err != storage.ErrNotFound {
		t.Fatalf("transaction still present: %v", err)
	}
}

func TestPeriodsFallbackOnEmptyLedger(t *testing.T) {
	svc := NewTransactionService(storage.NewMemoryStore(), nil)

	now := date(2024, time.June, 15)
	first, last, err := svc.Periods(context.Background(), now)
	if err != nil {
		t.Fatalf("periods: %v", err)
	}
	if !last.Equal(now) {
		t.Fatalf("last = %s, want %s", last, now)
	}
	if !first.Equal(now.AddDate(0, -11, 0)) {
		t.Fatalf("first = %s, want trailing twelve months", first)
	}
}

func TestSummarize(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewTransactionService(store, nil)
	ctx := context.Background()

	for i, in := range []CreateTransactionInput{
		{Description: "Salario", Amount: "3000", Type: core.Income},
		{Description: "Aluguel", Amount: "1200", Type: core.Expense},
		{Description: "Mercado", Amount: "300", Type: core.Expense},
	} {
		in.Date = date(2024, time.July, i+1)
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("create %q: %v", in.Description, err)
		}
	}

	start, end := core.MonthRange(2024, time.July)
	sum, err := svc.Summarize(ctx, storage.TransactionFilter{PeriodStart: start, PeriodEnd: end})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if sum.TotalIncome != 300000 {
		t.Fatalf("income = %d", sum.TotalIncome)
	}
	if sum.TotalExpense != 150000 {
		t.Fatalf("expense = %d", sum.TotalExpense)
	}
	if sum.Balance != 150000 {
		t.Fatalf("balance = %d", sum.Balance)
	}
	if len(sum.RecentTransactions) != 3 {
		t.Fatalf("recent = %d", len(sum.RecentTransactions))
	}
	// Newest first.
	if sum.RecentTransactions[0].Description != "Mercado" {
		t.Fatalf("recent[0] = %q", sum.RecentTransactions[0].Description)
	}
}
