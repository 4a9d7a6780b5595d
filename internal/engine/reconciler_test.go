package engine

import (
	"testing"
	"time"

	"bilancio/internal/core"
)

func tx(typ core.TransactionType, cents int64, on time.Time) core.Transaction {
	return core.Transaction{
		ID:           on.Format("20060102") + string(typ),
		Amount:       core.Money{Cents: cents},
		Date:         on,
		Description:  "tx",
		Type:         typ,
		Category:     "general",
		MainCategory: "household",
	}
}

func balanceOf(t *testing.T, budgets []core.MonthlyBudget, month core.MonthKey) int64 {
	t.Helper()
	for _, b := range budgets {
		if b.Month == month {
			return b.Balance.Cents
		}
	}
	t.Fatalf("no budget for %s", month)
	return 0
}

func TestReconcileCarryForward(t *testing.T) {
	transactions := []core.Transaction{
		tx(core.Income, 300000, day(2024, 1, 5)),
		tx(core.Expense, 100000, day(2024, 1, 20)),
		tx(core.Expense, 50000, day(2024, 2, 10)),
		tx(core.Investment, 20000, day(2024, 3, 1)),
		tx(core.Income, 10000, day(2024, 3, 15)),
	}

	budgets := Reconcile(transactions, nil)
	if len(budgets) != 3 {
		t.Fatalf("expected 3 budgets, got %d", len(budgets))
	}
	// Balance is net cumulative since the first transaction.
	if got := balanceOf(t, budgets, "2024-01"); got != 200000 {
		t.Errorf("2024-01 balance = %d, want 200000", got)
	}
	if got := balanceOf(t, budgets, "2024-02"); got != 150000 {
		t.Errorf("2024-02 balance = %d, want 150000", got)
	}
	if got := balanceOf(t, budgets, "2024-03"); got != 140000 {
		t.Errorf("2024-03 balance = %d, want 140000", got)
	}
}

func TestReconcileBridgesEmptyMonths(t *testing.T) {
	transactions := []core.Transaction{
		tx(core.Income, 100000, day(2024, 1, 5)),
		tx(core.Expense, 30000, day(2024, 4, 10)),
	}

	budgets := Reconcile(transactions, nil)
	if len(budgets) != 4 {
		t.Fatalf("expected 4 budgets (jan..apr), got %d", len(budgets))
	}
	// Zero-activity months hold the balance flat.
	if got := balanceOf(t, budgets, "2024-02"); got != 100000 {
		t.Errorf("2024-02 balance = %d, want 100000", got)
	}
	if got := balanceOf(t, budgets, "2024-03"); got != 100000 {
		t.Errorf("2024-03 balance = %d, want 100000", got)
	}
	if got := balanceOf(t, budgets, "2024-04"); got != 70000 {
		t.Errorf("2024-04 balance = %d, want 70000", got)
	}
}

func TestReconcileKeepsExistingBudgets(t *testing.T) {
	existing := []core.MonthlyBudget{{
		Month:          "2024-06",
		IncomeGoal:     core.Money{Cents: 500000},
		ExpenseLimit:   core.Money{Cents: 200000},
		CategoryLimits: map[string]core.Money{"food": {Cents: 40000}},
	}}
	transactions := []core.Transaction{
		tx(core.Income, 100000, day(2024, 1, 5)),
	}

	budgets := Reconcile(transactions, existing)
	if len(budgets) != 2 {
		t.Fatalf("expected 2 budgets, got %d", len(budgets))
	}
	// Goal-only month outside the transaction range is reconciled too,
	// and its user-set fields survive.
	june := budgets[1]
	if june.Month != "2024-06" {
		t.Fatalf("expected 2024-06 last, got %s", june.Month)
	}
	if june.IncomeGoal.Cents != 500000 || june.ExpenseLimit.Cents != 200000 {
		t.Error("user-set goals were not preserved")
	}
	if june.CategoryLimits["food"].Cents != 40000 {
		t.Error("category limits were not preserved")
	}
	if june.Balance.Cents != 100000 {
		t.Errorf("2024-06 balance = %d, want carried 100000", june.Balance.Cents)
	}
	// Input budgets stay untouched.
	if existing[0].Balance.Cents != 0 {
		t.Error("Reconcile mutated its input")
	}
}

func TestReconcileSplitsDoNotChangeTotals(t *testing.T) {
	split := tx(core.Income, 100000, day(2024, 1, 5))
	split.IsSplit = true
	split.Splits = []core.Split{
		{ID: "s1", Amount: core.Money{Cents: 40000}, Category: "savings"},
		{ID: "s2", Amount: core.Money{Cents: 60000}, Category: "salary"},
	}

	budgets := Reconcile([]core.Transaction{split}, nil)
	if got := balanceOf(t, budgets, "2024-01"); got != 100000 {
		t.Errorf("balance = %d, want parent amount 100000", got)
	}
}

func TestReconcileEmptyInputs(t *testing.T) {
	if got := Reconcile(nil, nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
