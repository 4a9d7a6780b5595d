package engine

import (
	"sort"

	"bilancio/internal/core"
)

// Reconcile recomputes per-month totals and the carried-forward running
// balance for every month touched by a transaction or an existing
// budget record, including zero-activity months in between. Budgets are
// created lazily with zeroed goals for months that have transactions
// but no record yet; none are ever removed.
//
// Balance is a net cumulative position since the first transaction, not
// a monthly-reset figure. Split sub-amounts do not change monthly
// totals: income/expense/investment sums key off the parent
// transaction's type and amount only.
func Reconcile(transactions []core.Transaction, budgets []core.MonthlyBudget) []core.MonthlyBudget {
	months := monthsToReconcile(transactions, budgets)
	if len(months) == 0 {
		return nil
	}

	existing := make(map[core.MonthKey]core.MonthlyBudget, len(budgets))
	for _, b := range budgets {
		existing[b.Month] = b
	}

	out := make([]core.MonthlyBudget, 0, len(months))
	var running core.Money
	for _, month := range months {
		budget, ok := existing[month]
		if !ok {
			budget = core.MonthlyBudget{Month: month}
		} else {
			budget.CategoryLimits = cloneLimits(budget.CategoryLimits)
		}

		var income, expenses, investments core.Money
		for _, t := range transactions {
			if !month.Contains(t.Date) {
				continue
			}
			switch t.Type {
			case core.Income:
				income = income.Add(t.Amount)
			case core.Expense:
				expenses = expenses.Add(t.Amount)
			case core.Investment:
				investments = investments.Add(t.Amount)
			}
		}

		running = running.Add(income).Sub(expenses).Sub(investments)
		budget.Balance = running
		out = append(out, budget)
	}
	return out
}

// monthsToReconcile is the union of the earliest..latest transaction
// month range and every month already holding a budget, ascending.
func monthsToReconcile(transactions []core.Transaction, budgets []core.MonthlyBudget) []core.MonthKey {
	set := make(map[core.MonthKey]struct{})
	for _, b := range budgets {
		set[b.Month] = struct{}{}
	}

	if len(transactions) > 0 {
		first := core.MonthKeyOf(transactions[0].Date)
		last := first
		for _, t := range transactions[1:] {
			k := core.MonthKeyOf(t.Date)
			if k < first {
				first = k
			}
			if k > last {
				last = k
			}
		}
		for _, k := range core.MonthRange(first, last) {
			set[k] = struct{}{}
		}
	}

	months := make([]core.MonthKey, 0, len(set))
	for k := range set {
		months = append(months, k)
	}
	sort.Slice(months, func(i, j int) bool { return months[i] < months[j] })
	return months
}

func cloneLimits(limits map[string]core.Money) map[string]core.Money {
	if limits == nil {
		return nil
	}
	out := make(map[string]core.Money, len(limits))
	for k, v := range limits {
		out[k] = v
	}
	return out
}
