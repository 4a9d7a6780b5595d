package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/cli"
	"bilancio/internal/core"
	"bilancio/internal/engine"
	"bilancio/internal/storage"
)

const usage = `Usage:
  bilancio add <income|expense|investment> <amount> <category> <description...>
  bilancio report [YYYY-MM]
  bilancio rule add <weekly|monthly|quarterly|yearly> <income|expense|investment> <amount> <category> <description...>
  bilancio rule list
  bilancio rule delete <rule-id>
  bilancio materialize
`

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.OpenStore(logger, cfg)
	defer store.Close()

	ctx := context.Background()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "add":
		err = runAdd(ctx, store, os.Args[2:])
	case "report":
		err = runReport(ctx, store, os.Args[2:])
	case "rule":
		err = runRule(ctx, store, os.Args[2:])
	case "materialize":
		err = runMaterialize(ctx, store)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("Command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

// mainCategoryFor resolves the main category for a category id: the
// parent for a subcategory, the category itself when top-level.
// Categories outside the registry are rejected here, at the boundary.
func mainCategoryFor(categories core.CategoryRegistry, id string) (string, error) {
	cat, ok := categories.Lookup(id)
	if !ok {
		return "", fmt.Errorf("unknown category %q", id)
	}
	if cat.ParentID != "" {
		return cat.ParentID, nil
	}
	return cat.ID, nil
}

// runAdd records a transaction, feeds income through the savings
// allocator, reconciles and stores the result.
func runAdd(ctx context.Context, store storage.LedgerStore, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("usage: add <type> <amount> <category> <description...>")
	}

	cents, err := core.ParseDecimalToCents(args[1])
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", args[1], err)
	}

	tx := core.Transaction{
		ID:          uuid.NewString(),
		Amount:      core.Money{Cents: cents},
		Date:        time.Now().UTC(),
		Description: strings.Join(args[3:], " "),
		Type:        core.TransactionType(args[0]),
		Category:    args[2],
	}

	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	tx.MainCategory, err = mainCategoryFor(snap.Categories, tx.Category)
	if err != nil {
		return err
	}

	if err := tx.Validate(); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}

	var events []engine.Event
	if tx.Type == core.Income {
		allocated, goals, allocEvents, err := engine.AllocateIncome(ctx, tx, snap.Goals)
		if err != nil {
			return fmt.Errorf("allocate income: %w", err)
		}
		tx = allocated
		snap.Goals = goals
		events = allocEvents
	}

	snap.Transactions = append(snap.Transactions, tx)
	snap.Budgets = engine.Reconcile(snap.Transactions, snap.Budgets)

	if err := store.ReplaceSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}

	fmt.Printf("Recorded %s of %s in %q\n", tx.Type, tx.Amount, tx.Category)
	if out := cli.RenderEvents(events); out != "" {
		fmt.Print(out)
	}
	return nil
}

// runReport prints the month report and the advisor's insights.
func runReport(ctx context.Context, store storage.LedgerStore, args []string) error {
	now := time.Now()
	month := core.MonthKeyOf(now)
	if len(args) > 0 {
		parsed, err := core.ParseMonthKey(args[0])
		if err != nil {
			return fmt.Errorf("parse month %q: %w", args[0], err)
		}
		month = parsed
	}

	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	report := engine.BuildMonthReport(snap, month)
	fmt.Print(cli.RenderMonthReport(report))

	budget, ok := snap.BudgetFor(month)
	if !ok {
		budget.Month = month
	}
	insights := engine.Recommend(snap.Transactions, budget, snap.Goals, snap.Categories, now)
	if out := cli.RenderEvents(insights); out != "" {
		fmt.Println()
		fmt.Print(out)
	}
	return nil
}

func runRule(ctx context.Context, store storage.LedgerStore, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: rule <add|list|delete>")
	}
	switch args[0] {
	case "add":
		return runRuleAdd(ctx, store, args[1:])
	case "list":
		return runRuleList(ctx, store)
	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("usage: rule delete <rule-id>")
		}
		if err := store.DeleteRule(ctx, args[1]); err != nil {
			return fmt.Errorf("delete rule: %w", err)
		}
		fmt.Printf("Deleted rule %s and its transactions\n", args[1])
		return nil
	default:
		return fmt.Errorf("unknown rule command %q", args[0])
	}
}

func runRuleAdd(ctx context.Context, store storage.LedgerStore, args []string) error {
	if len(args) < 5 {
		return fmt.Errorf("usage: rule add <frequency> <type> <amount> <category> <description...>")
	}

	cents, err := core.ParseDecimalToCents(args[2])
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", args[2], err)
	}

	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	rule := core.RecurringRule{
		ID:          uuid.NewString(),
		Description: strings.Join(args[4:], " "),
		Amount:      core.Money{Cents: cents},
		Type:        core.TransactionType(args[1]),
		Category:    args[3],
		Frequency:   core.Frequency(args[0]),
		StartDate:   time.Now().UTC(),
	}
	rule.MainCategory, err = mainCategoryFor(snap.Categories, rule.Category)
	if err != nil {
		return err
	}
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}

	snap.Rules = append(snap.Rules, rule)
	if err := store.ReplaceSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}

	fmt.Printf("Added %s rule %s: %s (%s)\n", rule.Frequency, rule.ID, rule.Description, rule.Amount)
	return nil
}

func runRuleList(ctx context.Context, store storage.LedgerStore) error {
	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if len(snap.Rules) == 0 {
		fmt.Println("No recurring rules")
		return nil
	}
	for _, r := range snap.Rules {
		checkpoint := "never"
		if !r.LastProcessed.IsZero() {
			checkpoint = r.LastProcessed.Format("2006-01-02")
		}
		fmt.Printf("%s  %-9s %-10s %10s  %-20s last=%s\n",
			r.ID, r.Frequency, r.Type, r.Amount, r.Description, checkpoint)
	}
	return nil
}

// runMaterialize performs one catch-up pass from the command line.
func runMaterialize(ctx context.Context, store storage.LedgerStore) error {
	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	created, rules, err := engine.Materialize(ctx, snap.Rules, snap.Transactions, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("materialize: %w", err)
	}
	snap.Transactions = append(snap.Transactions, created...)
	snap.Rules = rules
	snap.Budgets = engine.Reconcile(snap.Transactions, snap.Budgets)

	if err := store.ReplaceSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Materialization complete", "created", len(created))
	fmt.Printf("Materialized %d transactions\n", len(created))
	return nil
}
