package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"contas/internal/core"
)

// errUniquePeriod mirrors the SQLite unique index on
// (recurring_transaction_id, period_key).
var errUniquePeriod = errors.New("transaction already exists for recurring period")

// MemoryStore is an in-memory Store used by unit tests and local runs without
// a database file. It honors the same atomicity and uniqueness semantics as
// the SQLite repository.
type MemoryStore struct {
	mu           sync.Mutex
	nextID       int64
	categories   map[int64]core.Category
	transactions map[int64]core.Transaction
	plans        map[int64]core.InstallmentPlan
	installments map[int64]core.Installment
	recurring    map[int64]core.RecurringTransaction
	goals        map[int64]core.FinancialGoal
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categories:   make(map[int64]core.Category),
		transactions: make(map[int64]core.Transaction),
		plans:        make(map[int64]core.InstallmentPlan),
		installments: make(map[int64]core.Installment),
		recurring:    make(map[int64]core.RecurringTransaction),
		goals:        make(map[int64]core.FinancialGoal),
	}
}

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *MemoryStore) Close() error { return nil }

// Categories

func (s *MemoryStore) CreateCategory(_ context.Context, c *core.Category) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	c.CreatedAt = time.Now().UTC()
	s.categories[c.ID] = *c
	return c.ID, nil
}

func (s *MemoryStore) GetCategory(_ context.Context, id int64) (*core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *MemoryStore) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return ErrNotFound
	}
	delete(s.categories, id)
	// Null out references, matching ON DELETE SET NULL.
	for tid, t := range s.transactions {
		if t.CategoryID != nil && *t.CategoryID == id {
			t.CategoryID = nil
			s.transactions[tid] = t
		}
	}
	for rid, r := range s.recurring {
		if r.CategoryID != nil && *r.CategoryID == id {
			r.CategoryID = nil
			s.recurring[rid] = r
		}
	}
	return nil
}

func (s *MemoryStore) TopCategories(_ context.Context, limit int) ([]CategoryWithCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[int64]int64)
	for _, t := range s.transactions {
		if t.CategoryID != nil {
			counts[*t.CategoryID]++
		}
	}
	out := make([]CategoryWithCount, 0, len(s.categories))
	for id, c := range s.categories {
		out = append(out, CategoryWithCount{Category: c, Count: counts[id]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category.Title < out[j].Category.Title
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Transactions

func (s *MemoryStore) CreateTransaction(_ context.Context, t *core.Transaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertTransactionLocked(t)
}

// insertTransactionLocked enforces the per-period uniqueness constraint the
// SQLite schema declares. Callers hold s.mu.
func (s *MemoryStore) insertTransactionLocked(t *core.Transaction) (int64, error) {
	if t.RecurringID != nil && s.hasPeriodLocked(*t.RecurringID, t.PeriodKey) {
		return 0, errUniquePeriod
	}
	t.ID = s.id()
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	s.transactions[t.ID] = *t
	return t.ID, nil
}

func (s *MemoryStore) GetTransaction(_ context.Context, id int64) (*core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (s *MemoryStore) UpdateTransaction(_ context.Context, t *core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.transactions[t.ID]
	if !ok {
		return ErrNotFound
	}
	t.CreatedAt = old.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	s.transactions[t.ID] = *t
	return nil
}

func (s *MemoryStore) SetTransactionSettled(_ context.Context, id int64, settled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return ErrNotFound
	}
	t.Settled = settled
	t.UpdatedAt = time.Now().UTC()
	s.transactions[id] = t
	return nil
}

func (s *MemoryStore) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *MemoryStore) ListTransactions(_ context.Context, f TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.Date.Before(f.PeriodStart) || !t.Date.Before(f.PeriodEnd) {
			continue
		}
		if f.SettledOnly && !t.Settled {
			continue
		}
		if f.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *f.CategoryID) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemoryStore) TransactionDateBounds(_ context.Context) (time.Time, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.transactions) == 0 {
		return time.Time{}, time.Time{}, ErrNotFound
	}
	var first, last time.Time
	for _, t := range s.transactions {
		if first.IsZero() || t.Date.Before(first) {
			first = t.Date
		}
		if t.Date.After(last) {
			last = t.Date
		}
	}
	return first, last, nil
}

// Installment plans

func (s *MemoryStore) CreateInstallmentPlan(_ context.Context, plan *core.InstallmentPlan, installments []core.Installment, first *core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan.ID = s.id()
	plan.CreatedAt = time.Now().UTC()
	s.plans[plan.ID] = *plan
	for i := range installments {
		inst := &installments[i]
		inst.ID = s.id()
		inst.PlanID = plan.ID
		s.installments[inst.ID] = *inst
	}
	first.InstallmentID = &installments[0].ID
	if _, err := s.insertTransactionLocked(first); err != nil {
		// Roll the unit back; partial creation never becomes visible.
		delete(s.plans, plan.ID)
		for _, inst := range installments {
			delete(s.installments, inst.ID)
		}
		return err
	}
	return nil
}

func (s *MemoryStore) GetInstallmentPlan(_ context.Context, id int64) (*core.InstallmentPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) ListInstallments(_ context.Context, planID int64) ([]core.Installment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Installment
	for _, inst := range s.installments {
		if inst.PlanID == planID {
			out = append(out, inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// Recurring series

func (s *MemoryStore) CreateRecurring(_ context.Context, r *core.RecurringTransaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id()
	now := time.Now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now
	s.recurring[r.ID] = *r
	return r.ID, nil
}

func (s *MemoryStore) GetRecurring(_ context.Context, id int64) (*core.RecurringTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recurring[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *MemoryStore) ListRecurring(_ context.Context, activeOnly bool) ([]core.RecurringTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.RecurringTransaction
	for _, r := range s.recurring {
		if activeOnly && !r.Active {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].NextDueDate.Equal(out[j].NextDueDate) {
			return out[i].NextDueDate.Before(out[j].NextDueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) DeactivateRecurring(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recurring[id]
	if !ok {
		return ErrNotFound
	}
	r.Active = false
	r.UpdatedAt = time.Now().UTC()
	s.recurring[id] = r
	return nil
}

func (s *MemoryStore) DueRecurring(_ context.Context, asOf time.Time) ([]core.RecurringTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.RecurringTransaction
	for _, r := range s.recurring {
		if r.Active && !r.NextDueDate.After(asOf) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].NextDueDate.Equal(out[j].NextDueDate) {
			return out[i].NextDueDate.Before(out[j].NextDueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) HasTransactionForPeriod(_ context.Context, recurringID int64, periodKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasPeriodLocked(recurringID, periodKey), nil
}

func (s *MemoryStore) hasPeriodLocked(recurringID int64, periodKey string) bool {
	for _, t := range s.transactions {
		if t.RecurringID != nil && *t.RecurringID == recurringID && t.PeriodKey == periodKey {
			return true
		}
	}
	return false
}

func (s *MemoryStore) ApplyRecurringAdvance(_ context.Context, adv RecurringAdvance) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recurring[adv.RecurringID]
	if !ok {
		return false, ErrNotFound
	}

	created := false
	if adv.Transaction != nil {
		if _, err := s.insertTransactionLocked(adv.Transaction); err == nil {
			created = true
		}
	}

	if adv.Deactivate {
		r.Active = false
	} else if adv.NextDueDate != nil {
		r.NextDueDate = *adv.NextDueDate
	}
	r.UpdatedAt = time.Now().UTC()
	s.recurring[adv.RecurringID] = r
	return created, nil
}

// Financial goals

func (s *MemoryStore) CreateGoal(_ context.Context, g *core.FinancialGoal) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = s.id()
	now := time.Now().UTC()
	g.CreatedAt, g.UpdatedAt = now, now
	s.goals[g.ID] = *g
	return g.ID, nil
}

func (s *MemoryStore) GetGoal(_ context.Context, id int64) (*core.FinancialGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &g, nil
}

func (s *MemoryStore) ListGoals(_ context.Context) ([]core.FinancialGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.FinancialGoal, 0, len(s.goals))
	for _, g := range s.goals {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TargetDate.Equal(out[j].TargetDate) {
			return out[i].TargetDate.Before(out[j].TargetDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) DeleteGoal(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[id]; !ok {
		return ErrNotFound
	}
	delete(s.goals, id)
	for tid, t := range s.transactions {
		if t.GoalID != nil && *t.GoalID == id {
			t.GoalID = nil
			s.transactions[tid] = t
		}
	}
	return nil
}

func (s *MemoryStore) UpdateGoalProgress(_ context.Context, id int64, currentCents int64, status core.GoalStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok {
		return ErrNotFound
	}
	g.CurrentAmount = core.Money{Cents: currentCents}
	g.Status = status
	g.UpdatedAt = time.Now().UTC()
	s.goals[id] = g
	return nil
}

func (s *MemoryStore) SumGoalContributions(_ context.Context, goalID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, t := range s.transactions {
		if t.GoalID != nil && *t.GoalID == goalID && t.Type == core.Income {
			sum += t.Amount.Cents
		}
	}
	return sum, nil
}

var _ Store = (*MemoryStore)(nil)
