package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

const (
	Monthly Frequency = "MONTHLY"
)

const (
	GoalInProgress GoalStatus = "IN_PROGRESS"
	GoalCompleted  GoalStatus = "COMPLETED"
	GoalExpired    GoalStatus = "EXPIRED"
)

type (
	// TransactionType carries the sign of a transaction; amounts themselves
	// are always non-negative.
	TransactionType string

	// Frequency of a recurring series. Only MONTHLY is supported.
	Frequency string

	// GoalStatus is the lifecycle state of a financial goal.
	GoalStatus string

	Money struct {
		Cents int64
	}

	Category struct {
		ID          int64
		Title       string
		Description string
		Icon        string
		Color       string
		CreatedAt   time.Time
	}

	Transaction struct {
		ID          int64
		Description string
		Amount      Money
		Type        TransactionType
		Date        time.Time // economic date, not creation timestamp
		Settled     bool
		CategoryID  *int64
		// InstallmentID links the transaction realized for installment #1
		// of a plan back to that installment.
		InstallmentID *int64
		// RecurringID and PeriodKey identify the recurring series and the
		// due period a materialized transaction belongs to.
		RecurringID *int64
		PeriodKey   string
		GoalID      *int64
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	InstallmentPlan struct {
		ID                   int64
		Description          string
		TotalAmount          Money
		NumberOfInstallments int
		FirstDueDate         time.Time
		CreatedAt            time.Time
	}

	Installment struct {
		ID      int64
		PlanID  int64
		Number  int // 1-based, unique within a plan
		Amount  Money
		DueDate time.Time
	}

	RecurringTransaction struct {
		ID          int64
		Description string
		Amount      Money
		Type        TransactionType
		CategoryID  *int64
		Frequency   Frequency
		StartDate   time.Time
		NextDueDate time.Time // mutable cursor, advanced by the scheduler
		EndDate     *time.Time
		Active      bool
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	FinancialGoal struct {
		ID            int64
		Title         string
		Description   string
		TargetAmount  Money
		CurrentAmount Money
		TargetDate    time.Time
		Status        GoalStatus
		CreatedAt     time.Time
		UpdatedAt     time.Time
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrEmptyDescription    = errors.New("empty description")
	ErrEmptyTitle          = errors.New("empty title")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrInvalidFrequency    = errors.New("invalid frequency")
	ErrInvalidColor        = errors.New("invalid category color")
	ErrInvalidInstallments = errors.New("installment count must be at least 1")
	ErrZeroDate            = errors.New("date cannot be zero")
)

// CategoryColors is the fixed palette accepted for category color tags.
var CategoryColors = []string{"blue", "purple", "orange", "pink", "yellow", "green", "red", "gray"}

// ValidColor reports whether color belongs to the fixed palette.
func ValidColor(color string) bool {
	for _, c := range CategoryColors {
		if c == color {
			return true
		}
	}
	return false
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

func (f Frequency) Validate() error {
	if f != Monthly {
		return ErrInvalidFrequency
	}
	return nil
}

func (s GoalStatus) Validate() error {
	switch s {
	case GoalInProgress, GoalCompleted, GoalExpired:
		return nil
	}
	return errors.New("invalid goal status")
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(c.Title) > 100 {
		return errors.New("title too long (max 100 characters)")
	}
	if !ValidColor(c.Color) {
		return ErrInvalidColor
	}
	return nil
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}

func (r RecurringTransaction) Validate() error {
	if len(strings.TrimSpace(r.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(r.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	// Recurring series are constrained to expenses.
	if r.Type != Expense {
		return ErrInvalidType
	}
	if err := r.Frequency.Validate(); err != nil {
		return err
	}
	if r.StartDate.IsZero() {
		return errors.New("invalid start date: " + ErrZeroDate.Error())
	}
	if r.NextDueDate.IsZero() {
		return errors.New("invalid next due date: " + ErrZeroDate.Error())
	}
	if r.EndDate != nil {
		if r.EndDate.IsZero() {
			return errors.New("invalid end date: " + ErrZeroDate.Error())
		}
		if r.EndDate.Before(r.StartDate) {
			return errors.New("end date must not be before start date")
		}
	}
	return nil
}

func (g FinancialGoal) Validate() error {
	if len(strings.TrimSpace(g.Title)) == 0 {
		return ErrEmptyTitle
	}
	if g.TargetAmount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if err := g.CurrentAmount.Validate(); err != nil {
		return err
	}
	if g.TargetDate.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// Progress returns the goal's completion percentage, capped at 100.
func (g FinancialGoal) Progress() int {
	if g.TargetAmount.Cents <= 0 {
		return 0
	}
	p := g.CurrentAmount.Cents * 100 / g.TargetAmount.Cents
	if p > 100 {
		p = 100
	}
	return int(p)
}
