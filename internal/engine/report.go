package engine

import (
	"sort"

	"bilancio/internal/core"
)

type (
	// CategoryLine is one row of a month report: what was spent in a
	// category against its configured limit (zero limit means none set).
	CategoryLine struct {
		CategoryID string
		Name       string
		Spent      core.Money
		Limit      core.Money
	}

	// MonthReport is the rendered view of one reconciled month, built
	// for the CLI and the spreadsheet exporter.
	MonthReport struct {
		Month       core.MonthKey
		Income      core.Money
		Expenses    core.Money
		Investments core.Money
		// Net is this month's income minus expenses and investments.
		Net core.Money
		// Balance is the cumulative carry-forward balance through this
		// month, as computed by reconciliation.
		Balance core.Money
		Lines   []CategoryLine
		Goals   []core.SavingsGoal
	}
)

// BuildMonthReport assembles the report for one month from a snapshot.
// Category lines are sorted by spend, largest first, ties by id.
func BuildMonthReport(snap core.Snapshot, month core.MonthKey) MonthReport {
	report := MonthReport{Month: month, Goals: snap.Goals}

	for _, t := range snap.TransactionsIn(month) {
		switch t.Type {
		case core.Income:
			report.Income = report.Income.Add(t.Amount)
		case core.Expense:
			report.Expenses = report.Expenses.Add(t.Amount)
		case core.Investment:
			report.Investments = report.Investments.Add(t.Amount)
		}
	}
	report.Net = report.Income.Sub(report.Expenses).Sub(report.Investments)

	budget, ok := snap.BudgetFor(month)
	if ok {
		report.Balance = budget.Balance
	} else {
		report.Balance = report.Net
	}

	spend := categorySpend(snap.Transactions, month)
	for cat, cents := range spend {
		line := CategoryLine{
			CategoryID: cat,
			Name:       categoryName(snap.Categories, cat),
			Spent:      core.Money{Cents: cents},
		}
		if ok {
			line.Limit = budget.CategoryLimits[cat]
		}
		report.Lines = append(report.Lines, line)
	}
	// Limits with no spend still show up, at zero.
	if ok {
		for cat, limit := range budget.CategoryLimits {
			if _, spent := spend[cat]; spent {
				continue
			}
			report.Lines = append(report.Lines, CategoryLine{
				CategoryID: cat,
				Name:       categoryName(snap.Categories, cat),
				Limit:      limit,
			})
		}
	}

	sort.Slice(report.Lines, func(i, j int) bool {
		if report.Lines[i].Spent.Cents != report.Lines[j].Spent.Cents {
			return report.Lines[i].Spent.Cents > report.Lines[j].Spent.Cents
		}
		return report.Lines[i].CategoryID < report.Lines[j].CategoryID
	})

	return report
}
