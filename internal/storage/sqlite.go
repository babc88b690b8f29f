package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"contas/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements Store on top of a SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// applies pending migrations.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// withTx runs fn inside a transaction, rolling back on error.
func (r *SQLiteRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func idPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.Time
	return &v
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Categories

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c *core.Category) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (title, description, icon, color) VALUES (?, ?, ?, ?)`,
		c.Title, c.Description, c.Icon, c.Color)
	if err != nil {
		return 0, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("category insert id: %w", err)
	}
	c.ID = id
	slog.InfoContext(ctx, "Category created", "id", id, "title", c.Title, "color", c.Color)
	return id, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (*core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, icon, color, created_at FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Title, &c.Description, &c.Icon, &c.Color, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	return &c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, icon, color, created_at FROM categories ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Icon, &c.Color, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteCategory removes the category. Referencing transactions and recurring
// series keep existing with a null category (ON DELETE SET NULL); deletion is
// never refused.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	slog.InfoContext(ctx, "Category deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) TopCategories(ctx context.Context, limit int) ([]CategoryWithCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.title, c.description, c.icon, c.color, c.created_at, COUNT(t.id) AS tx_count
		FROM categories c
		LEFT JOIN transactions t ON t.category_id = c.id
		GROUP BY c.id
		ORDER BY tx_count DESC, c.title
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	defer rows.Close()

	var out []CategoryWithCount
	for rows.Next() {
		var cc CategoryWithCount
		if err := rows.Scan(&cc.Category.ID, &cc.Category.Title, &cc.Category.Description,
			&cc.Category.Icon, &cc.Category.Color, &cc.Category.CreatedAt, &cc.Count); err != nil {
			return nil, fmt.Errorf("scan top category: %w", err)
		}
		out = append(out, cc)
	}
	return out, rows.Err()
}

// Transactions

const transactionColumns = `id, description, amount_cents, type, date, settled,
	category_id, installment_id, recurring_transaction_id, period_key, goal_id,
	created_at, updated_at`

func scanTransaction(row interface{ Scan(...any) error }) (*core.Transaction, error) {
	var (
		t         core.Transaction
		settled   int64
		catID     sql.NullInt64
		instID    sql.NullInt64
		recID     sql.NullInt64
		periodKey sql.NullString
		goalID    sql.NullInt64
	)
	err := row.Scan(&t.ID, &t.Description, &t.Amount.Cents, &t.Type, &t.Date, &settled,
		&catID, &instID, &recID, &periodKey, &goalID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Settled = settled != 0
	t.CategoryID = idPtr(catID)
	t.InstallmentID = idPtr(instID)
	t.RecurringID = idPtr(recID)
	t.PeriodKey = periodKey.String
	t.GoalID = idPtr(goalID)
	return &t, nil
}

func insertTransaction(ctx context.Context, ex interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, t *core.Transaction) (int64, error) {
	res, err := ex.ExecContext(ctx, `
		INSERT INTO transactions (description, amount_cents, type, date, settled,
			category_id, installment_id, recurring_transaction_id, period_key, goal_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Description, t.Amount.Cents, string(t.Type), t.Date.UTC(), boolInt(t.Settled),
		nullID(t.CategoryID), nullID(t.InstallmentID), nullID(t.RecurringID),
		nullStr(t.PeriodKey), nullID(t.GoalID))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t *core.Transaction) (int64, error) {
	id, err := insertTransaction(ctx, r.db, t)
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}
	t.ID = id
	slog.InfoContext(ctx, "Transaction created",
		"id", id, "description", t.Description, "amount_cents", t.Amount.Cents, "type", t.Type)
	return id, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t *core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET description = ?, amount_cents = ?, type = ?, date = ?, settled = ?,
			category_id = ?, goal_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		t.Description, t.Amount.Cents, string(t.Type), t.Date.UTC(), boolInt(t.Settled),
		nullID(t.CategoryID), nullID(t.GoalID), t.ID)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) SetTransactionSettled(ctx context.Context, id int64, settled bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET settled = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		boolInt(settled), id)
	if err != nil {
		return fmt.Errorf("set transaction %d settled: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTransaction removes a single transaction. Plans and recurring series
// are never touched: deleting a materialized transaction does not rewind the
// schedule that produced it.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE date >= ? AND date < ?`
	args := []any{f.PeriodStart.UTC(), f.PeriodEnd.UTC()}
	if f.SettledOnly {
		query += ` AND settled = 1`
	}
	if f.CategoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, *f.CategoryID)
	}
	query += ` ORDER BY date DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) TransactionDateBounds(ctx context.Context) (time.Time, time.Time, error) {
	var first, last sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT MIN(date), MAX(date) FROM transactions`).Scan(&first, &last)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("transaction date bounds: %w", err)
	}
	if !first.Valid || !last.Valid {
		return time.Time{}, time.Time{}, ErrNotFound
	}
	return first.Time, last.Time, nil
}

// Installment plans

// CreateInstallmentPlan persists the plan, its installments, and the first
// realized transaction in one SQL transaction. Any failure rolls back the
// whole unit, including the plan row.
func (r *SQLiteRepository) CreateInstallmentPlan(ctx context.Context, plan *core.InstallmentPlan, installments []core.Installment, first *core.Transaction) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO installment_plans (description, total_amount_cents, number_of_installments, first_due_date)
			VALUES (?, ?, ?, ?)`,
			plan.Description, plan.TotalAmount.Cents, plan.NumberOfInstallments, plan.FirstDueDate.UTC())
		if err != nil {
			return fmt.Errorf("insert plan: %w", err)
		}
		planID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("plan insert id: %w", err)
		}
		plan.ID = planID

		for i := range installments {
			inst := &installments[i]
			inst.PlanID = planID
			res, err := tx.ExecContext(ctx, `
				INSERT INTO installments (plan_id, number, amount_cents, due_date)
				VALUES (?, ?, ?, ?)`,
				planID, inst.Number, inst.Amount.Cents, inst.DueDate.UTC())
			if err != nil {
				return fmt.Errorf("insert installment %d: %w", inst.Number, err)
			}
			if inst.ID, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("installment insert id: %w", err)
			}
		}

		first.InstallmentID = &installments[0].ID
		id, err := insertTransaction(ctx, tx, first)
		if err != nil {
			return fmt.Errorf("insert first installment transaction: %w", err)
		}
		first.ID = id
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Installment plan created",
		"plan_id", plan.ID,
		"description", plan.Description,
		"total_cents", plan.TotalAmount.Cents,
		"installments", plan.NumberOfInstallments)
	return nil
}

func (r *SQLiteRepository) GetInstallmentPlan(ctx context.Context, id int64) (*core.InstallmentPlan, error) {
	var p core.InstallmentPlan
	err := r.db.QueryRowContext(ctx, `
		SELECT id, description, total_amount_cents, number_of_installments, first_due_date, created_at
		FROM installment_plans WHERE id = ?`, id).
		Scan(&p.ID, &p.Description, &p.TotalAmount.Cents, &p.NumberOfInstallments, &p.FirstDueDate, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get installment plan %d: %w", id, err)
	}
	return &p, nil
}

func (r *SQLiteRepository) ListInstallments(ctx context.Context, planID int64) ([]core.Installment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, plan_id, number, amount_cents, due_date
		FROM installments WHERE plan_id = ? ORDER BY number`, planID)
	if err != nil {
		return nil, fmt.Errorf("list installments for plan %d: %w", planID, err)
	}
	defer rows.Close()

	var out []core.Installment
	for rows.Next() {
		var inst core.Installment
		if err := rows.Scan(&inst.ID, &inst.PlanID, &inst.Number, &inst.Amount.Cents, &inst.DueDate); err != nil {
			return nil, fmt.Errorf("scan installment: %w", err)
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

// Recurring series

const recurringColumns = `id, description, amount_cents, type, category_id, frequency,
	start_date, next_due_date, end_date, active, created_at, updated_at`

func scanRecurring(row interface{ Scan(...any) error }) (*core.RecurringTransaction, error) {
	var (
		rec    core.RecurringTransaction
		catID  sql.NullInt64
		endDt  sql.NullTime
		active int64
	)
	err := row.Scan(&rec.ID, &rec.Description, &rec.Amount.Cents, &rec.Type, &catID, &rec.Frequency,
		&rec.StartDate, &rec.NextDueDate, &endDt, &active, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.CategoryID = idPtr(catID)
	rec.EndDate = timePtr(endDt)
	rec.Active = active != 0
	return &rec, nil
}

func (r *SQLiteRepository) CreateRecurring(ctx context.Context, rec *core.RecurringTransaction) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_transactions
			(description, amount_cents, type, category_id, frequency, start_date, next_due_date, end_date, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Description, rec.Amount.Cents, string(rec.Type), nullID(rec.CategoryID),
		string(rec.Frequency), rec.StartDate.UTC(), rec.NextDueDate.UTC(),
		nullTime(rec.EndDate), boolInt(rec.Active))
	if err != nil {
		return 0, fmt.Errorf("create recurring transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("recurring insert id: %w", err)
	}
	rec.ID = id
	slog.InfoContext(ctx, "Recurring transaction created",
		"id", id, "description", rec.Description, "next_due", rec.NextDueDate.Format("2006-01-02"))
	return id, nil
}

func (r *SQLiteRepository) GetRecurring(ctx context.Context, id int64) (*core.RecurringTransaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_transactions WHERE id = ?`, id)
	rec, err := scanRecurring(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recurring transaction %d: %w", id, err)
	}
	return rec, nil
}

func (r *SQLiteRepository) ListRecurring(ctx context.Context, activeOnly bool) ([]core.RecurringTransaction, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_transactions`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY next_due_date, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list recurring transactions: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringTransaction
	for rows.Next() {
		rec, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring transaction: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeactivateRecurring(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_transactions SET active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate recurring transaction %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	slog.InfoContext(ctx, "Recurring transaction deactivated", "id", id)
	return nil
}

func (r *SQLiteRepository) DueRecurring(ctx context.Context, asOf time.Time) ([]core.RecurringTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_transactions
		WHERE active = 1 AND next_due_date <= ? ORDER BY next_due_date, id`, asOf.UTC())
	if err != nil {
		return nil, fmt.Errorf("select due recurring transactions: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringTransaction
	for rows.Next() {
		rec, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scan due recurring transaction: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) HasTransactionForPeriod(ctx context.Context, recurringID int64, periodKey string) (bool, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM transactions WHERE recurring_transaction_id = ? AND period_key = ?`,
		recurringID, periodKey).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check period %s for recurring %d: %w", periodKey, recurringID, err)
	}
	return n > 0, nil
}

// ApplyRecurringAdvance commits the transaction insert (if any) and the
// cursor/active update as one unit. A unique-index violation on the insert
// means a concurrent pass won the period; the advance still commits and the
// insert is reported as skipped.
func (r *SQLiteRepository) ApplyRecurringAdvance(ctx context.Context, adv RecurringAdvance) (bool, error) {
	created := false
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if adv.Transaction != nil {
			id, err := insertTransaction(ctx, tx, adv.Transaction)
			switch {
			case isUniqueViolation(err):
				slog.WarnContext(ctx, "Period already materialized by concurrent pass",
					"recurring_id", adv.RecurringID, "period_key", adv.Transaction.PeriodKey)
			case err != nil:
				return fmt.Errorf("insert recurring transaction: %w", err)
			default:
				adv.Transaction.ID = id
				created = true
			}
		}

		if adv.Deactivate {
			if _, err := tx.ExecContext(ctx,
				`UPDATE recurring_transactions SET active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
				adv.RecurringID); err != nil {
				return fmt.Errorf("deactivate recurring %d: %w", adv.RecurringID, err)
			}
			return nil
		}
		if adv.NextDueDate != nil {
			if _, err := tx.ExecContext(ctx,
				`UPDATE recurring_transactions SET next_due_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
				adv.NextDueDate.UTC(), adv.RecurringID); err != nil {
				return fmt.Errorf("advance recurring %d: %w", adv.RecurringID, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// Financial goals

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g *core.FinancialGoal) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO financial_goals (title, description, target_amount_cents, current_amount_cents, target_date, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		g.Title, g.Description, g.TargetAmount.Cents, g.CurrentAmount.Cents,
		g.TargetDate.UTC(), string(g.Status))
	if err != nil {
		return 0, fmt.Errorf("create goal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("goal insert id: %w", err)
	}
	g.ID = id
	slog.InfoContext(ctx, "Financial goal created", "id", id, "title", g.Title, "target_cents", g.TargetAmount.Cents)
	return id, nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, id int64) (*core.FinancialGoal, error) {
	var g core.FinancialGoal
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, description, target_amount_cents, current_amount_cents, target_date, status, created_at, updated_at
		FROM financial_goals WHERE id = ?`, id).
		Scan(&g.ID, &g.Title, &g.Description, &g.TargetAmount.Cents, &g.CurrentAmount.Cents,
			&g.TargetDate, &g.Status, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get goal %d: %w", id, err)
	}
	return &g, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.FinancialGoal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, target_amount_cents, current_amount_cents, target_date, status, created_at, updated_at
		FROM financial_goals ORDER BY target_date, id`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.FinancialGoal
	for rows.Next() {
		var g core.FinancialGoal
		if err := rows.Scan(&g.ID, &g.Title, &g.Description, &g.TargetAmount.Cents, &g.CurrentAmount.Cents,
			&g.TargetDate, &g.Status, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM financial_goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	slog.InfoContext(ctx, "Financial goal deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) UpdateGoalProgress(ctx context.Context, id int64, currentCents int64, status core.GoalStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE financial_goals SET current_amount_cents = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, currentCents, string(status), id)
	if err != nil {
		return fmt.Errorf("update goal %d progress: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) SumGoalContributions(ctx context.Context, goalID int64) (int64, error) {
	var sum sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(amount_cents) FROM transactions WHERE goal_id = ? AND type = 'INCOME'`, goalID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum goal %d contributions: %w", goalID, err)
	}
	return sum.Int64, nil
}

var _ Store = (*SQLiteRepository)(nil)
