// Package memory is an in-process ReportWriter used in tests and when
// no spreadsheet is configured.
package memory

import (
	"context"
	"sync"

	"bilancio/internal/core"
	"bilancio/internal/engine"
	ports "bilancio/internal/export"
)

type Writer struct {
	mu      sync.RWMutex
	reports map[core.MonthKey]engine.MonthReport
}

var _ ports.ReportWriter = (*Writer)(nil)

func NewWriter() *Writer {
	return &Writer{reports: make(map[core.MonthKey]engine.MonthReport)}
}

func (w *Writer) WriteMonthReport(ctx context.Context, report engine.MonthReport) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reports[report.Month] = report
	return nil
}

// Report returns the last exported report for a month.
func (w *Writer) Report(month core.MonthKey) (engine.MonthReport, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	r, ok := w.reports[month]
	return r, ok
}
