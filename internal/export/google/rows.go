package google

import (
	"bilancio/internal/engine"
)

// ReportRows flattens a month report into sheet rows (columns A:E).
// The first row carries the month key in column A so the block can be
// found again on the next export; detail rows leave column A empty.
func ReportRows(report engine.MonthReport) [][]any {
	rows := [][]any{
		{string(report.Month), toEuros(report.Income.Cents), toEuros(report.Expenses.Cents),
			toEuros(report.Investments.Cents), toEuros(report.Balance.Cents)},
	}

	for _, line := range report.Lines {
		row := []any{"", line.Name, toEuros(line.Spent.Cents), "", ""}
		if line.Limit.Cents > 0 {
			row[3] = toEuros(line.Limit.Cents)
		}
		rows = append(rows, row)
	}

	for _, g := range report.Goals {
		status := ""
		if g.Completed {
			status = "done"
		}
		rows = append(rows, []any{"", "Goal: " + g.Name,
			toEuros(g.CurrentAmount.Cents), toEuros(g.TargetAmount.Cents), status})
	}

	return rows
}

func toEuros(cents int64) float64 {
	return float64(cents) / 100.0
}
