// Package worker runs the periodic catch-up pass: materialize due
// recurring transactions, reconcile balances, then publish events and
// export the current month's report.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/cache"
	"bilancio/internal/core"
	"bilancio/internal/engine"
	"bilancio/internal/export"
	"bilancio/internal/storage"
)

// EventPublisher delivers engine events to the notification queue.
type EventPublisher interface {
	PublishEvents(ctx context.Context, month core.MonthKey, events []engine.Event) error
}

type Worker struct {
	store     storage.LedgerStore
	publisher EventPublisher      // nil disables notifications
	exporter  export.ReportWriter // nil disables the export loop
	interval  time.Duration
	now       func() time.Time

	// exported remembers the last written report per month so an
	// unchanged month is not re-sent to the spreadsheet every tick.
	exported *cache.LRUCache[engine.MonthReport]
}

func New(store storage.LedgerStore, publisher EventPublisher, exporter export.ReportWriter, interval time.Duration) *Worker {
	return &Worker{
		store:     store,
		publisher: publisher,
		exporter:  exporter,
		interval:  interval,
		now:       time.Now,
		exported:  cache.NewLRUCache[engine.MonthReport](12, 24*time.Hour),
	}
}

// Run executes one catch-up pass immediately, then keeps running on the
// configured interval until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.RunOnce(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup catch-up pass failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.RunOnce(ctx); err != nil {
					slog.ErrorContext(ctx, "Catch-up pass failed", "error", err)
				}
			}
		}
	})

	if w.exporter != nil {
		g.Go(func() error {
			ticker := time.NewTicker(w.interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					if err := w.ExportCurrentMonth(ctx); err != nil {
						slog.ErrorContext(ctx, "Month export failed", "error", err)
					}
				}
			}
		})
	}

	return g.Wait()
}

// RunOnce performs one full pass: load, materialize, reconcile, store,
// then publish the advisor's insights for the current month.
func (w *Worker) RunOnce(ctx context.Context) error {
	now := w.now()
	start := time.Now()

	snap, err := w.store.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	created, rules, err := engine.Materialize(ctx, snap.Rules, snap.Transactions, now)
	if err != nil {
		return fmt.Errorf("materialize recurring rules: %w", err)
	}
	snap.Transactions = append(snap.Transactions, created...)
	snap.Rules = rules

	snap.Budgets = engine.Reconcile(snap.Transactions, snap.Budgets)

	if err := w.store.ReplaceSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}

	month := core.MonthKeyOf(now)
	slog.InfoContext(ctx, "Catch-up pass complete",
		"month", month,
		"materialized", len(created),
		"budgets", len(snap.Budgets),
		"duration", time.Since(start))

	if w.publisher == nil {
		return nil
	}

	var events []engine.Event
	for _, t := range created {
		events = append(events, engine.Event{
			Type:    engine.EventInfo,
			Message: fmt.Sprintf("Recorded recurring %s: %s (%s)", t.Type, t.Description, t.Amount),
		})
	}
	budget, _ := snap.BudgetFor(month)
	if budget.Month == "" {
		budget.Month = month
	}
	events = append(events, engine.Recommend(snap.Transactions, budget, snap.Goals, snap.Categories, now)...)

	if len(events) == 0 {
		return nil
	}
	if err := w.publisher.PublishEvents(ctx, month, events); err != nil {
		// The ledger is already stored; notification failures must not
		// fail the pass.
		slog.ErrorContext(ctx, "Failed to publish events", "error", err, "count", len(events))
	}
	return nil
}

// ExportCurrentMonth writes the current month's report to the exporter.
func (w *Worker) ExportCurrentMonth(ctx context.Context) error {
	if w.exporter == nil {
		return nil
	}

	snap, err := w.store.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	month := core.MonthKeyOf(w.now())
	report := engine.BuildMonthReport(snap, month)

	if last, ok := w.exported.Get(string(month)); ok && reflect.DeepEqual(last, report) {
		slog.DebugContext(ctx, "Month report unchanged, skipping export", "month", month)
		return nil
	}

	if err := w.exporter.WriteMonthReport(ctx, report); err != nil {
		return fmt.Errorf("write month report: %w", err)
	}
	w.exported.Set(string(month), report)

	slog.InfoContext(ctx, "Month report exported", "month", month, "lines", len(report.Lines))
	return nil
}
