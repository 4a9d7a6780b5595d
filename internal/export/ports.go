// Package export defines the outbound port for publishing month
// reports to an external surface, plus its adapters.
package export

import (
	"context"

	"bilancio/internal/engine"
)

// ReportWriter is the outbound port for month reports.
type ReportWriter interface {
	// WriteMonthReport publishes the report, replacing any previously
	// exported version of the same month.
	WriteMonthReport(ctx context.Context, report engine.MonthReport) error
}
