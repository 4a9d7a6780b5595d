package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bilancio/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the ledger in a single sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) LoadSnapshot(ctx context.Context) (core.Snapshot, error) {
	var snap core.Snapshot
	var err error

	if snap.Transactions, err = s.loadTransactions(ctx); err != nil {
		return core.Snapshot{}, fmt.Errorf("load transactions: %w", err)
	}
	if snap.Rules, err = s.loadRules(ctx); err != nil {
		return core.Snapshot{}, fmt.Errorf("load recurring rules: %w", err)
	}
	if snap.Budgets, err = s.loadBudgets(ctx); err != nil {
		return core.Snapshot{}, fmt.Errorf("load budgets: %w", err)
	}
	if snap.Goals, err = s.loadGoals(ctx); err != nil {
		return core.Snapshot{}, fmt.Errorf("load savings goals: %w", err)
	}
	if snap.Categories, err = s.loadCategories(ctx); err != nil {
		return core.Snapshot{}, fmt.Errorf("load categories: %w", err)
	}
	return snap, nil
}

// ReplaceSnapshot rewrites the mutable ledger tables in one database
// transaction. Categories are migration-managed and left alone.
func (s *SQLiteStore) ReplaceSnapshot(ctx context.Context, snap core.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"transaction_splits", "transactions", "recurring_rules", "category_limits", "monthly_budgets", "savings_goals"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := insertTransactions(ctx, tx, snap.Transactions); err != nil {
		return err
	}
	if err := insertRules(ctx, tx, snap.Rules); err != nil {
		return err
	}
	if err := insertBudgets(ctx, tx, snap.Budgets); err != nil {
		return err
	}
	if err := insertGoals(ctx, tx, snap.Goals); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Ledger snapshot replaced",
		"transactions", len(snap.Transactions),
		"rules", len(snap.Rules),
		"budgets", len(snap.Budgets),
		"goals", len(snap.Goals))
	return nil
}

// DeleteRule hard-deletes a rule and cascades to every transaction it
// materialized.
func (s *SQLiteStore) DeleteRule(ctx context.Context, ruleID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM transaction_splits WHERE transaction_id IN
		   (SELECT id FROM transactions WHERE recurring_rule_id = ?)`, ruleID); err != nil {
		return fmt.Errorf("delete rule splits: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM transactions WHERE recurring_rule_id = ?", ruleID)
	if err != nil {
		return fmt.Errorf("delete rule transactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM recurring_rules WHERE id = ?", ruleID); err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rule deletion: %w", err)
	}

	deleted, _ := res.RowsAffected()
	slog.InfoContext(ctx, "Recurring rule deleted", "rule_id", ruleID, "transactions_deleted", deleted)
	return nil
}

func (s *SQLiteStore) loadTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, amount_cents, date, description, type, category, main_category,
		        COALESCE(recurring_rule_id, ''), is_split
		   FROM transactions ORDER BY date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var date string
		var isSplit int
		if err := rows.Scan(&t.ID, &t.Amount.Cents, &date, &t.Description, &t.Type,
			&t.Category, &t.MainCategory, &t.RecurringRuleID, &isSplit); err != nil {
			return nil, err
		}
		if t.Date, err = parseInstant(date); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		t.IsSplit = isSplit != 0
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return s.attachSplits(ctx, out)
}

func (s *SQLiteStore) attachSplits(ctx context.Context, transactions []core.Transaction) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT transaction_id, id, amount_cents, category, main_category, description
		   FROM transaction_splits ORDER BY transaction_id, position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byTx := make(map[string][]core.Split)
	for rows.Next() {
		var txID string
		var sp core.Split
		if err := rows.Scan(&txID, &sp.ID, &sp.Amount.Cents, &sp.Category, &sp.MainCategory, &sp.Description); err != nil {
			return nil, err
		}
		byTx[txID] = append(byTx[txID], sp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range transactions {
		transactions[i].Splits = byTx[transactions[i].ID]
	}
	return transactions, nil
}

func (s *SQLiteStore) loadRules(ctx context.Context) ([]core.RecurringRule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, description, amount_cents, type, category, main_category, frequency,
		        start_date, COALESCE(end_date, ''), COALESCE(last_processed, '')
		   FROM recurring_rules ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.RecurringRule
	for rows.Next() {
		var r core.RecurringRule
		var start, end, last string
		if err := rows.Scan(&r.ID, &r.Description, &r.Amount.Cents, &r.Type, &r.Category,
			&r.MainCategory, &r.Frequency, &start, &end, &last); err != nil {
			return nil, err
		}
		if r.StartDate, err = parseInstant(start); err != nil {
			return nil, fmt.Errorf("rule %s start date: %w", r.ID, err)
		}
		if r.EndDate, err = parseOptionalInstant(end); err != nil {
			return nil, fmt.Errorf("rule %s end date: %w", r.ID, err)
		}
		if r.LastProcessed, err = parseOptionalInstant(last); err != nil {
			return nil, fmt.Errorf("rule %s checkpoint: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadBudgets(ctx context.Context) ([]core.MonthlyBudget, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT month, income_goal_cents, expense_limit_cents, investment_goal_cents, balance_cents
		   FROM monthly_budgets ORDER BY month`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.MonthlyBudget
	index := make(map[core.MonthKey]int)
	for rows.Next() {
		var b core.MonthlyBudget
		if err := rows.Scan(&b.Month, &b.IncomeGoal.Cents, &b.ExpenseLimit.Cents,
			&b.InvestmentGoal.Cents, &b.Balance.Cents); err != nil {
			return nil, err
		}
		index[b.Month] = len(out)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	limits, err := s.db.QueryContext(ctx, "SELECT month, category, limit_cents FROM category_limits")
	if err != nil {
		return nil, err
	}
	defer limits.Close()
	for limits.Next() {
		var month core.MonthKey
		var category string
		var cents int64
		if err := limits.Scan(&month, &category, &cents); err != nil {
			return nil, err
		}
		i, ok := index[month]
		if !ok {
			continue
		}
		if out[i].CategoryLimits == nil {
			out[i].CategoryLimits = make(map[string]core.Money)
		}
		out[i].CategoryLimits[category] = core.Money{Cents: cents}
	}
	return out, limits.Err()
}

func (s *SQLiteStore) loadGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, target_cents, current_cents, COALESCE(deadline, ''), category,
		        auto_allocate_percent, completed
		   FROM savings_goals ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.SavingsGoal
	for rows.Next() {
		var g core.SavingsGoal
		var deadline string
		var completed int
		if err := rows.Scan(&g.ID, &g.Name, &g.TargetAmount.Cents, &g.CurrentAmount.Cents,
			&deadline, &g.Category, &g.AutoAllocatePercent, &completed); err != nil {
			return nil, err
		}
		if g.Deadline, err = parseOptionalInstant(deadline); err != nil {
			return nil, fmt.Errorf("goal %s deadline: %w", g.ID, err)
		}
		g.Completed = completed != 0
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadCategories(ctx context.Context) (core.CategoryRegistry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(parent_id, ''), type, discretionary FROM categories`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		var discretionary int
		if err := rows.Scan(&c.ID, &c.Name, &c.ParentID, &c.Type, &discretionary); err != nil {
			return nil, err
		}
		c.Discretionary = discretionary != 0
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return core.NewCategoryRegistry(cats)
}

func insertTransactions(ctx context.Context, tx *sql.Tx, transactions []core.Transaction) error {
	for _, t := range transactions {
		var ruleID any
		if t.RecurringRuleID != "" {
			ruleID = t.RecurringRuleID
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, amount_cents, date, description, type, category,
			                           main_category, recurring_rule_id, is_split)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Amount.Cents, formatInstant(t.Date), t.Description, string(t.Type),
			t.Category, t.MainCategory, ruleID, boolInt(t.IsSplit)); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
		for i, sp := range t.Splits {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO transaction_splits (id, transaction_id, amount_cents, category,
				                                 main_category, description, position)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				sp.ID, t.ID, sp.Amount.Cents, sp.Category, sp.MainCategory, sp.Description, i); err != nil {
				return fmt.Errorf("insert split %s: %w", sp.ID, err)
			}
		}
	}
	return nil
}

func insertRules(ctx context.Context, tx *sql.Tx, rules []core.RecurringRule) error {
	for _, r := range rules {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO recurring_rules (id, description, amount_cents, type, category,
			                              main_category, frequency, start_date, end_date, last_processed)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Description, r.Amount.Cents, string(r.Type), r.Category, r.MainCategory,
			string(r.Frequency), formatInstant(r.StartDate),
			formatOptionalInstant(r.EndDate), formatOptionalInstant(r.LastProcessed)); err != nil {
			return fmt.Errorf("insert rule %s: %w", r.ID, err)
		}
	}
	return nil
}

func insertBudgets(ctx context.Context, tx *sql.Tx, budgets []core.MonthlyBudget) error {
	for _, b := range budgets {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO monthly_budgets (month, income_goal_cents, expense_limit_cents,
			                              investment_goal_cents, balance_cents)
			 VALUES (?, ?, ?, ?, ?)`,
			string(b.Month), b.IncomeGoal.Cents, b.ExpenseLimit.Cents,
			b.InvestmentGoal.Cents, b.Balance.Cents); err != nil {
			return fmt.Errorf("insert budget %s: %w", b.Month, err)
		}
		for category, limit := range b.CategoryLimits {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO category_limits (month, category, limit_cents) VALUES (?, ?, ?)",
				string(b.Month), category, limit.Cents); err != nil {
				return fmt.Errorf("insert limit %s/%s: %w", b.Month, category, err)
			}
		}
	}
	return nil
}

func insertGoals(ctx context.Context, tx *sql.Tx, goals []core.SavingsGoal) error {
	for i, g := range goals {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO savings_goals (id, name, target_cents, current_cents, deadline,
			                            category, auto_allocate_percent, completed, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			g.ID, g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents,
			formatOptionalInstant(g.Deadline), g.Category, g.AutoAllocatePercent,
			boolInt(g.Completed), i); err != nil {
			return fmt.Errorf("insert goal %s: %w", g.ID, err)
		}
	}
	return nil
}

func formatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatOptionalInstant(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatInstant(t)
}

func parseInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse instant %q: %w", s, err)
	}
	return t, nil
}

func parseOptionalInstant(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return parseInstant(s)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
