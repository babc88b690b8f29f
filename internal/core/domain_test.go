package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		Description: "Groceries",
		Amount:      Money{Cents: 1500},
		Type:        Expense,
		Date:        date(2024, time.March, 10),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"empty description", func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{"long description", func(tx *Transaction) { tx.Description = strings.Repeat("x", 201) }, nil},
		{"negative amount", func(tx *Transaction) { tx.Amount.Cents = -1 }, ErrInvalidAmount},
		{"bad type", func(tx *Transaction) { tx.Type = "TRANSFER" }, ErrInvalidType},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }, ErrZeroDate},
	}
	for _, tc := range cases {
		tx := valid
		tc.mutate(&tx)
		err := tx.Validate()
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestRecurringTransactionValidate(t *testing.T) {
	start := date(2024, time.January, 5)
	valid := RecurringTransaction{
		Description: "Rent",
		Amount:      Money{Cents: 120000},
		Type:        Expense,
		Frequency:   Monthly,
		StartDate:   start,
		NextDueDate: start,
		Active:      true,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid recurring rejected: %v", err)
	}

	r := valid
	r.Type = Income
	if !errors.Is(r.Validate(), ErrInvalidType) {
		t.Fatal("income recurring should be rejected")
	}

	r = valid
	r.Frequency = "WEEKLY"
	if !errors.Is(r.Validate(), ErrInvalidFrequency) {
		t.Fatal("non-monthly frequency should be rejected")
	}

	r = valid
	before := start.AddDate(0, 0, -1)
	r.EndDate = &before
	if r.Validate() == nil {
		t.Fatal("end date before start date should be rejected")
	}

	r = valid
	after := start.AddDate(0, 6, 0)
	r.EndDate = &after
	if err := r.Validate(); err != nil {
		t.Fatalf("future end date rejected: %v", err)
	}
}

func TestCategoryValidate(t *testing.T) {
	valid := Category{Title: "Mercado", Color: "green"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid category rejected: %v", err)
	}

	c := valid
	c.Title = ""
	if !errors.Is(c.Validate(), ErrEmptyTitle) {
		t.Fatal("empty title should be rejected")
	}

	c = valid
	c.Color = "magenta"
	if !errors.Is(c.Validate(), ErrInvalidColor) {
		t.Fatal("off-palette color should be rejected")
	}
}

func TestValidColor(t *testing.T) {
	for _, color := range CategoryColors {
		if !ValidColor(color) {
			t.Fatalf("palette color %q rejected", color)
		}
	}
	if ValidColor("teal") || ValidColor("") {
		t.Fatal("non-palette color accepted")
	}
}

func TestGoalProgress(t *testing.T) {
	cases := []struct {
		current, target int64
		want            int
	}{
		{0, 10000, 0},
		{5000, 10000, 50},
		{10000, 10000, 100},
		{15000, 10000, 100}, // capped
		{33, 100, 33},
		{0, 0, 0},
	}
	for _, tc := range cases {
		g := FinancialGoal{
			CurrentAmount: Money{Cents: tc.current},
			TargetAmount:  Money{Cents: tc.target},
		}
		if got := g.Progress(); got != tc.want {
			t.Fatalf("Progress(%d/%d) = %d, want %d", tc.current, tc.target, got, tc.want)
		}
	}
}

func TestFinancialGoalValidate(t *testing.T) {
	valid := FinancialGoal{
		Title:        "Emergency fund",
		TargetAmount: Money{Cents: 1000000},
		TargetDate:   date(2025, time.December, 31),
		Status:       GoalInProgress,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid goal rejected: %v", err)
	}

	g := valid
	g.TargetAmount.Cents = 0
	if !errors.Is(g.Validate(), ErrInvalidAmount) {
		t.Fatal("zero target should be rejected")
	}

	g = valid
	g.TargetDate = time.Time{}
	if !errors.Is(g.Validate(), ErrZeroDate) {
		t.Fatal("zero target date should be rejected")
	}
}
