package cli

import (
	"fmt"
	"strings"

	"bilancio/internal/engine"
)

// RenderMonthReport formats a month report for terminal output.
func RenderMonthReport(report engine.MonthReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Month %s\n", report.Month)
	fmt.Fprintf(&b, "  Income:      %10s\n", report.Income)
	fmt.Fprintf(&b, "  Expenses:    %10s\n", report.Expenses)
	fmt.Fprintf(&b, "  Investments: %10s\n", report.Investments)
	fmt.Fprintf(&b, "  Net:         %10s\n", report.Net)
	fmt.Fprintf(&b, "  Balance:     %10s\n", report.Balance)

	if len(report.Lines) > 0 {
		b.WriteString("\nSpending by category:\n")
		for _, line := range report.Lines {
			if line.Limit.Cents > 0 {
				marker := ""
				if line.Spent.Cents > line.Limit.Cents {
					marker = "  OVER"
				}
				fmt.Fprintf(&b, "  %-20s %10s / %s%s\n", line.Name, line.Spent, line.Limit, marker)
				continue
			}
			fmt.Fprintf(&b, "  %-20s %10s\n", line.Name, line.Spent)
		}
	}

	if len(report.Goals) > 0 {
		b.WriteString("\nSavings goals:\n")
		for _, g := range report.Goals {
			status := ""
			if g.Completed {
				status = "  done"
			}
			fmt.Fprintf(&b, "  %-20s %10s / %s%s\n", g.Name, g.CurrentAmount, g.TargetAmount, status)
		}
	}

	return b.String()
}

// RenderEvents formats engine events and insights for terminal output,
// one per line with a type prefix.
func RenderEvents(events []engine.Event) string {
	if len(events) == 0 {
		return ""
	}
	var b strings.Builder
	for _, ev := range events {
		fmt.Fprintf(&b, "[%s] %s\n", strings.ToUpper(string(ev.Type)), ev.Message)
	}
	return b.String()
}
