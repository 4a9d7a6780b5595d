package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"bilancio/internal/core"
)

// Advisor thresholds. Ratios are expressed in percent to keep the
// arithmetic on integers.
const (
	spendRatioWarnPercent      = 80  // expenses vs income
	concentrationWarnPercent   = 80  // subcategory share of parent spend
	savingsLoadWarnPercent     = 20  // required contributions vs income
	discretionaryWarnPercent   = 30  // discretionary spend vs income
	chronicOveragePercent      = 120 // spend vs configured limit
	suggestedLimitRaisePercent = 110
)

// Recommend produces budget insights from reconciled state. It is
// read-only: nothing is mutated, no side effects. Transactions outside
// the budget's month are ignored. Insights come back in generation
// order; callers may re-sort by type for display.
func Recommend(transactions []core.Transaction, budget core.MonthlyBudget, goals []core.SavingsGoal, categories core.CategoryRegistry, now time.Time) []Insight {
	var insights []Insight

	var income, expenses int64
	for _, t := range transactions {
		if budget.Month != "" && !budget.Month.Contains(t.Date) {
			continue
		}
		switch t.Type {
		case core.Income:
			income += t.Amount.Cents
		case core.Expense:
			expenses += t.Amount.Cents
		}
	}

	// Overall spend ratio.
	if income > 0 && expenses*100 > income*spendRatioWarnPercent {
		pct := expenses * 100 / income
		insights = append(insights, warning(fmt.Sprintf(
			"Spending is at %d%% of income this month", pct)))
	}

	spend := categorySpend(transactions, budget.Month)

	// Per-category limit overruns, plus the chronic list for batching.
	var chronic []string
	for _, cat := range sortedKeys(budget.CategoryLimits) {
		limit := budget.CategoryLimits[cat].Cents
		if limit <= 0 {
			continue
		}
		spent := spend[cat]
		if spent > limit {
			suggested := ceilDiv(spent*suggestedLimitRaisePercent, 100)
			insights = append(insights, warning(fmt.Sprintf(
				"Category %q is %s over its limit; consider raising it to %s",
				categoryName(categories, cat),
				core.Money{Cents: spent - limit},
				core.Money{Cents: suggested})))
		}
		if spent*100 > limit*chronicOveragePercent {
			chronic = append(chronic, categoryName(categories, cat))
		}
	}

	// Subcategory concentration inside each parent category.
	for _, parent := range sortedParents(categories) {
		var parentTotal, subTotal int64
		parentTotal = spend[parent]
		for _, child := range categories.Children(parent) {
			parentTotal += spend[child]
			subTotal += spend[child]
		}
		if parentTotal > 0 && subTotal*100 > parentTotal*concentrationWarnPercent {
			insights = append(insights, info(fmt.Sprintf(
				"Subcategories make up most of %q spend; consider per-subcategory limits",
				categoryName(categories, parent))))
		}
	}

	// Savings feasibility: required monthly contributions vs income.
	var required int64
	for _, g := range goals {
		if g.Completed {
			continue
		}
		months := core.MonthsUntil(now, g.Deadline)
		if months <= 0 {
			continue
		}
		required += g.Remaining().Cents / int64(months)
	}
	if income > 0 && required*100 > income*savingsLoadWarnPercent {
		insights = append(insights, info(fmt.Sprintf(
			"Savings goals need %s per month, over %d%% of income; consider adjusting goals",
			core.Money{Cents: required}, savingsLoadWarnPercent)))
	}

	// Discretionary spend vs income.
	var discretionary int64
	for cat, cents := range spend {
		if c, ok := categories.Lookup(cat); ok && c.Discretionary {
			discretionary += cents
		}
	}
	if income > 0 && discretionary*100 > income*discretionaryWarnPercent {
		insights = append(insights, info(fmt.Sprintf(
			"Discretionary spending is %s, over %d%% of income",
			core.Money{Cents: discretionary}, discretionaryWarnPercent)))
	}

	// Chronic overruns batched into a single insight.
	if len(chronic) > 0 {
		insights = append(insights, info(fmt.Sprintf(
			"Consider adjusting limits for: %s", strings.Join(chronic, ", "))))
	}

	return insights
}

// categorySpend sums expense amounts per category for one month. Split
// transactions contribute per split: sub-amounts are additive for
// category breakdowns even though monthly totals key off the parent.
func categorySpend(transactions []core.Transaction, month core.MonthKey) map[string]int64 {
	spend := make(map[string]int64)
	for _, t := range transactions {
		if t.Type != core.Expense {
			continue
		}
		if month != "" && !month.Contains(t.Date) {
			continue
		}
		if t.IsSplit {
			for _, s := range t.Splits {
				spend[s.Category] += s.Amount.Cents
			}
			continue
		}
		spend[t.Category] += t.Amount.Cents
	}
	return spend
}

func categoryName(categories core.CategoryRegistry, id string) string {
	if c, ok := categories.Lookup(id); ok {
		return c.Name
	}
	return id
}

func sortedKeys(m map[string]core.Money) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedParents(categories core.CategoryRegistry) []string {
	var parents []string
	for id, c := range categories {
		if c.ParentID == "" {
			parents = append(parents, id)
		}
	}
	sort.Strings(parents)
	return parents
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
