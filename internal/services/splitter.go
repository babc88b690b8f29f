// Package services provides business logic and orchestration on top of the
// storage layer.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"contas/internal/core"
	"contas/internal/storage"
)

// installmentCadenceDays is the fixed spacing between installment due dates.
// Deliberately not calendar-month-aware: a 30-day cadence keeps the partition
// arithmetic independent of month lengths.
const installmentCadenceDays = 30

// SplitInput describes a purchase to be partitioned into installments.
type SplitInput struct {
	Description  string
	TotalCents   int64
	Installments int
	FirstDueDate time.Time
	Type         core.TransactionType
	CategoryID   *int64
}

// InstallmentSplitter partitions a purchase total into per-period charges and
// materializes the plan together with its first realized transaction.
type InstallmentSplitter struct {
	store storage.Store
}

func NewInstallmentSplitter(store storage.Store) *InstallmentSplitter {
	return &InstallmentSplitter{store: store}
}

// Split creates an installment plan for the given purchase.
//
// With Installments == 1 no plan is created: a single ordinary transaction is
// recorded and returned with a nil plan. With Installments >= 2 the total is
// divided by truncating integer division and the remainder lands entirely on
// the last installment, so the installment amounts always sum exactly to
// TotalCents. Due dates run at a fixed 30-day cadence from FirstDueDate.
//
// Only installment #1 produces a realized transaction; installments 2..N stay
// schedule-only records. The plan, all installments, and that first
// transaction persist as one failure-atomic unit.
func (s *InstallmentSplitter) Split(ctx context.Context, in SplitInput) (*core.InstallmentPlan, *core.Transaction, error) {
	if in.Installments < 1 {
		return nil, nil, core.ErrInvalidInstallments
	}
	if in.TotalCents < 0 {
		return nil, nil, core.ErrInvalidAmount
	}

	if in.Installments == 1 {
		// Bypass path: an ordinary transaction, no plan.
		tx := &core.Transaction{
			Description: in.Description,
			Amount:      core.Money{Cents: in.TotalCents},
			Type:        in.Type,
			Date:        core.StartOfDay(in.FirstDueDate),
			CategoryID:  in.CategoryID,
		}
		if err := tx.Validate(); err != nil {
			return nil, nil, err
		}
		if _, err := s.store.CreateTransaction(ctx, tx); err != nil {
			return nil, nil, fmt.Errorf("create transaction: %w", err)
		}
		return nil, tx, nil
	}

	perInstallment := in.TotalCents / int64(in.Installments)
	remainder := in.TotalCents - perInstallment*int64(in.Installments)

	plan := &core.InstallmentPlan{
		Description:          in.Description,
		TotalAmount:          core.Money{Cents: in.TotalCents},
		NumberOfInstallments: in.Installments,
		FirstDueDate:         core.StartOfDay(in.FirstDueDate),
	}

	installments := make([]core.Installment, in.Installments)
	for i := 0; i < in.Installments; i++ {
		amount := perInstallment
		if i == in.Installments-1 {
			amount += remainder // the last installment absorbs the remainder
		}
		installments[i] = core.Installment{
			Number:  i + 1,
			Amount:  core.Money{Cents: amount},
			DueDate: plan.FirstDueDate.AddDate(0, 0, i*installmentCadenceDays),
		}
	}

	first := &core.Transaction{
		Description: fmt.Sprintf("%s (1/%d)", in.Description, in.Installments),
		Amount:      installments[0].Amount,
		Type:        in.Type,
		Date:        installments[0].DueDate,
		CategoryID:  in.CategoryID,
	}
	if err := first.Validate(); err != nil {
		return nil, nil, err
	}

	if err := s.store.CreateInstallmentPlan(ctx, plan, installments, first); err != nil {
		return nil, nil, fmt.Errorf("create installment plan: %w", err)
	}

	slog.InfoContext(ctx, "Purchase split into installments",
		"plan_id", plan.ID,
		"total_cents", in.TotalCents,
		"installments", in.Installments,
		"per_installment_cents", perInstallment,
		"remainder_cents", remainder)

	return plan, first, nil
}
