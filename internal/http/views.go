package http

import (
	"time"

	"contas/internal/core"
	"contas/internal/storage"
)

// View types shape the JSON surface of the API. Amounts go out both as raw
// cents and as a formatted decimal string so clients never re-implement money
// arithmetic.

type transactionView struct {
	ID            int64      `json:"id"`
	Description   string     `json:"description"`
	AmountCents   int64      `json:"amountCents"`
	Amount        string     `json:"amount"`
	Type          string     `json:"type"`
	Date          string     `json:"date"`
	Settled       bool       `json:"settled"`
	CategoryID    *int64     `json:"categoryId,omitempty"`
	InstallmentID *int64     `json:"installmentId,omitempty"`
	RecurringID   *int64     `json:"recurringId,omitempty"`
	PeriodKey     string     `json:"periodKey,omitempty"`
	GoalID        *int64     `json:"goalId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func newTransactionView(t core.Transaction) transactionView {
	return transactionView{
		ID:            t.ID,
		Description:   t.Description,
		AmountCents:   t.Amount.Cents,
		Amount:        core.FormatCents(t.Amount.Cents),
		Type:          string(t.Type),
		Date:          t.Date.Format(dateLayout),
		Settled:       t.Settled,
		CategoryID:    t.CategoryID,
		InstallmentID: t.InstallmentID,
		RecurringID:   t.RecurringID,
		PeriodKey:     t.PeriodKey,
		GoalID:        t.GoalID,
		CreatedAt:     t.CreatedAt,
	}
}

func newTransactionViews(txs []core.Transaction) []transactionView {
	out := make([]transactionView, 0, len(txs))
	for _, t := range txs {
		out = append(out, newTransactionView(t))
	}
	return out
}

type categoryView struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color"`
}

func newCategoryView(c core.Category) categoryView {
	return categoryView{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Icon:        c.Icon,
		Color:       c.Color,
	}
}

type categoryCountView struct {
	categoryView
	TransactionCount int64 `json:"transactionCount"`
}

func newCategoryCountViews(rows []storage.CategoryWithCount) []categoryCountView {
	out := make([]categoryCountView, 0, len(rows))
	for _, r := range rows {
		out = append(out, categoryCountView{
			categoryView:     newCategoryView(r.Category),
			TransactionCount: r.Count,
		})
	}
	return out
}

type recurringView struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	AmountCents int64   `json:"amountCents"`
	Amount      string  `json:"amount"`
	Type        string  `json:"type"`
	CategoryID  *int64  `json:"categoryId,omitempty"`
	Frequency   string  `json:"frequency"`
	StartDate   string  `json:"startDate"`
	NextDueDate string  `json:"nextDueDate"`
	EndDate     *string `json:"endDate,omitempty"`
	Active      bool    `json:"active"`
}

func newRecurringView(r core.RecurringTransaction) recurringView {
	v := recurringView{
		ID:          r.ID,
		Description: r.Description,
		AmountCents: r.Amount.Cents,
		Amount:      core.FormatCents(r.Amount.Cents),
		Type:        string(r.Type),
		CategoryID:  r.CategoryID,
		Frequency:   string(r.Frequency),
		StartDate:   r.StartDate.Format(dateLayout),
		NextDueDate: r.NextDueDate.Format(dateLayout),
		Active:      r.Active,
	}
	if r.EndDate != nil {
		end := r.EndDate.Format(dateLayout)
		v.EndDate = &end
	}
	return v
}

type goalView struct {
	ID                 int64  `json:"id"`
	Title              string `json:"title"`
	Description        string `json:"description,omitempty"`
	TargetAmountCents  int64  `json:"targetAmountCents"`
	TargetAmount       string `json:"targetAmount"`
	CurrentAmountCents int64  `json:"currentAmountCents"`
	CurrentAmount      string `json:"currentAmount"`
	TargetDate         string `json:"targetDate"`
	Status             string `json:"status"`
	Progress           int    `json:"progress"`
}

func newGoalView(g core.FinancialGoal) goalView {
	return goalView{
		ID:                 g.ID,
		Title:              g.Title,
		Description:        g.Description,
		TargetAmountCents:  g.TargetAmount.Cents,
		TargetAmount:       core.FormatCents(g.TargetAmount.Cents),
		CurrentAmountCents: g.CurrentAmount.Cents,
		CurrentAmount:      core.FormatCents(g.CurrentAmount.Cents),
		TargetDate:         g.TargetDate.Format(dateLayout),
		Status:             string(g.Status),
		Progress:           g.Progress(),
	}
}

type dashboardView struct {
	BalanceCents      int64               `json:"balanceCents"`
	Balance           string              `json:"balance"`
	TotalIncomeCents  int64               `json:"totalIncomeCents"`
	TotalIncome       string              `json:"totalIncome"`
	TotalExpenseCents int64               `json:"totalExpenseCents"`
	TotalExpense      string              `json:"totalExpense"`
	Recent            []transactionView   `json:"recentTransactions"`
	TopCategories     []categoryCountView `json:"topCategories"`
}
