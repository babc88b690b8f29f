package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"contas/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSQLiteCategoryCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Migrations seed a default category set.
	seeded, err := repo.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(seeded) == 0 {
		t.Fatal("expected seeded categories")
	}

	cat := &core.Category{Title: "Pets", Description: "Ração e veterinário", Icon: "paw", Color: "orange"}
	id, err := repo.CreateCategory(ctx, cat)
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	got, err := repo.GetCategory(ctx, id)
	if err != nil {
		t.Fatalf("get category: %v", err)
	}
	if got.Title != "Pets" || got.Color != "orange" {
		t.Fatalf("got %+v", got)
	}

	if err := repo.DeleteCategory(ctx, id); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if _, err := repo.GetCategory(ctx, id); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if err := repo.DeleteCategory(ctx, id); err != ErrNotFound {
		t.Fatalf("double delete: got %v, want ErrNotFound", err)
	}
}

func TestSQLiteTransactionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx := &core.Transaction{
		Description: "Mercado",
		Amount:      core.Money{Cents: 15750},
		Type:        core.Expense,
		Date:        day(2024, time.March, 10),
	}
	id, err := repo.CreateTransaction(ctx, tx)
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	got, err := repo.GetTransaction(ctx, id)
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if got.Description != "Mercado" || got.Amount.Cents != 15750 || got.Type != core.Expense {
		t.Fatalf("got %+v", got)
	}
	if !got.Date.Equal(day(2024, time.March, 10)) {
		t.Fatalf("date = %s", got.Date)
	}
	if got.Settled {
		t.Fatal("new transaction should be unsettled")
	}
	if got.CategoryID != nil || got.RecurringID != nil || got.GoalID != nil {
		t.Fatalf("unexpected links: %+v", got)
	}

	if err := repo.SetTransactionSettled(ctx, id, true); err != nil {
		t.Fatalf("settle: %v", err)
	}
	got, _ = repo.GetTransaction(ctx, id)
	if !got.Settled {
		t.Fatal("settled flag not persisted")
	}

	if err := repo.DeleteTransaction(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetTransaction(ctx, id); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestSQLiteListTransactionsFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, d := range []time.Time{
		day(2024, time.February, 28),
		day(2024, time.March, 1),
		day(2024, time.March, 31),
		day(2024, time.April, 1),
	} {
		tx := &core.Transaction{
			Description: "t",
			Amount:      core.Money{Cents: 100},
			Type:        core.Expense,
			Date:        d,
		}
		if _, err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	out, err := repo.ListTransactions(ctx, TransactionFilter{
		PeriodStart: day(2024, time.March, 1),
		PeriodEnd:   day(2024, time.April, 1),
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d transactions, want 2", len(out))
	}
	// Newest first.
	if !out[0].Date.After(out[1].Date) {
		t.Fatalf("order: %s before %s", out[0].Date, out[1].Date)
	}

	first, last, err := repo.TransactionDateBounds(ctx)
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}
	if !first.Equal(day(2024, time.February, 28)) || !last.Equal(day(2024, time.April, 1)) {
		t.Fatalf("bounds = [%s, %s]", first, last)
	}
}

func TestSQLiteDateBoundsEmpty(t *testing.T) {
	repo := newTestRepo(t)
	if _, _, err := repo.TransactionDateBounds(context.Background()); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestSQLiteInstallmentPlan(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := day(2024, time.May, 10)
	plan := &core.InstallmentPlan{
		Description:          "Notebook",
		TotalAmount:          core.Money{Cents: 1000},
		NumberOfInstallments: 3,
		FirstDueDate:         first,
	}
	installments := []core.Installment{
		{Number: 1, Amount: core.Money{Cents: 333}, DueDate: first},
		{Number: 2, Amount: core.Money{Cents: 333}, DueDate: first.AddDate(0, 0, 30)},
		{Number: 3, Amount: core.Money{Cents: 334}, DueDate: first.AddDate(0, 0, 60)},
	}
	firstTx := &core.Transaction{
		Description: "Notebook (1/3)",
		Amount:      core.Money{Cents: 333},
		Type:        core.Expense,
		Date:        first,
	}

	if err := repo.CreateInstallmentPlan(ctx, plan, installments, firstTx); err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if plan.ID == 0 || firstTx.ID == 0 {
		t.Fatal("ids not assigned")
	}

	gotPlan, err := repo.GetInstallmentPlan(ctx, plan.ID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if gotPlan.TotalAmount.Cents != 1000 || gotPlan.NumberOfInstallments != 3 {
		t.Fatalf("got %+v", gotPlan)
	}

	gotInst, err := repo.ListInstallments(ctx, plan.ID)
	if err != nil {
		t.Fatalf("list installments: %v", err)
	}
	if len(gotInst) != 3 {
		t.Fatalf("got %d installments", len(gotInst))
	}
	var sum int64
	for i, inst := range gotInst {
		if inst.Number != i+1 {
			t.Fatalf("installment order: %+v", gotInst)
		}
		sum += inst.Amount.Cents
	}
	if sum != 1000 {
		t.Fatalf("installments sum to %d", sum)
	}

	gotTx, err := repo.GetTransaction(ctx, firstTx.ID)
	if err != nil {
		t.Fatalf("get first transaction: %v", err)
	}
	if gotTx.InstallmentID == nil || *gotTx.InstallmentID != gotInst[0].ID {
		t.Fatal("first transaction not linked to installment #1")
	}
}

func TestSQLiteRecurringAdvanceUniquePeriod(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := &core.RecurringTransaction{
		Description: "Internet",
		Amount:      core.Money{Cents: 9900},
		Type:        core.Expense,
		Frequency:   core.Monthly,
		StartDate:   day(2024, time.January, 5),
		NextDueDate: day(2024, time.January, 5),
		Active:      true,
	}
	if _, err := repo.CreateRecurring(ctx, rec); err != nil {
		t.Fatalf("create recurring: %v", err)
	}

	due, err := repo.DueRecurring(ctx, day(2024, time.January, 5))
	if err != nil || len(due) != 1 {
		t.Fatalf("due = %d, err = %v", len(due), err)
	}

	makeTx := func() *core.Transaction {
		id := rec.ID
		return &core.Transaction{
			Description: "Internet",
			Amount:      core.Money{Cents: 9900},
			Type:        core.Expense,
			Date:        day(2024, time.January, 5),
			RecurringID: &id,
			PeriodKey:   "2024-01",
		}
	}

	next := day(2024, time.February, 5)
	created, err := repo.ApplyRecurringAdvance(ctx, RecurringAdvance{
		RecurringID: rec.ID,
		Transaction: makeTx(),
		NextDueDate: &next,
	})
	if err != nil || !created {
		t.Fatalf("first advance: created=%v err=%v", created, err)
	}

	got, _ := repo.GetRecurring(ctx, rec.ID)
	if !got.NextDueDate.Equal(next) {
		t.Fatalf("cursor = %s", got.NextDueDate)
	}

	// A concurrent pass racing on the same period loses the insert but still
	// advances without error.
	next2 := day(2024, time.March, 5)
	created, err = repo.ApplyRecurringAdvance(ctx, RecurringAdvance{
		RecurringID: rec.ID,
		Transaction: makeTx(),
		NextDueDate: &next2,
	})
	if err != nil {
		t.Fatalf("duplicate advance errored: %v", err)
	}
	if created {
		t.Fatal("duplicate period insert reported as created")
	}
	got, _ = repo.GetRecurring(ctx, rec.ID)
	if !got.NextDueDate.Equal(next2) {
		t.Fatalf("cursor after duplicate = %s", got.NextDueDate)
	}

	has, err := repo.HasTransactionForPeriod(ctx, rec.ID, "2024-01")
	if err != nil || !has {
		t.Fatalf("HasTransactionForPeriod = %v, %v", has, err)
	}

	// Deactivation is terminal and leaves the cursor alone.
	if _, err := repo.ApplyRecurringAdvance(ctx, RecurringAdvance{RecurringID: rec.ID, Deactivate: true}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	got, _ = repo.GetRecurring(ctx, rec.ID)
	if got.Active {
		t.Fatal("series still active")
	}
	due, _ = repo.DueRecurring(ctx, day(2025, time.January, 1))
	if len(due) != 0 {
		t.Fatalf("deactivated series still due: %d", len(due))
	}
}

func TestSQLiteCategoryDeleteNullsReferences(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cat := &core.Category{Title: "Lazer", Color: "pink"}
	catID, err := repo.CreateCategory(ctx, cat)
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	tx := &core.Transaction{
		Description: "Cinema",
		Amount:      core.Money{Cents: 4000},
		Type:        core.Expense,
		Date:        day(2024, time.June, 1),
		CategoryID:  &catID,
	}
	txID, err := repo.CreateTransaction(ctx, tx)
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	if err := repo.DeleteCategory(ctx, catID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	got, err := repo.GetTransaction(ctx, txID)
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if got.CategoryID != nil {
		t.Fatal("category reference not nulled")
	}
}

func TestSQLiteGoalProgress(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	goal := &core.FinancialGoal{
		Title:        "Viagem",
		TargetAmount: core.Money{Cents: 100000},
		TargetDate:   day(2024, time.December, 31),
		Status:       core.GoalInProgress,
	}
	goalID, err := repo.CreateGoal(ctx, goal)
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	for _, c := range []struct {
		cents  int64
		txType core.TransactionType
	}{
		{30000, core.Income},
		{20000, core.Income},
		{5000, core.Expense}, // not a contribution
	} {
		tx := &core.Transaction{
			Description: "Aporte",
			Amount:      core.Money{Cents: c.cents},
			Type:        c.txType,
			Date:        day(2024, time.July, 1),
			GoalID:      &goalID,
		}
		if _, err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("create contribution: %v", err)
		}
	}

	sum, err := repo.SumGoalContributions(ctx, goalID)
	if err != nil {
		t.Fatalf("sum contributions: %v", err)
	}
	if sum != 50000 {
		t.Fatalf("sum = %d, want 50000", sum)
	}

	if err := repo.UpdateGoalProgress(ctx, goalID, sum, core.GoalInProgress); err != nil {
		t.Fatalf("update progress: %v", err)
	}
	got, err := repo.GetGoal(ctx, goalID)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if got.CurrentAmount.Cents != 50000 {
		t.Fatalf("current = %d", got.CurrentAmount.Cents)
	}
}
