package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

func TestRunAddExpenseTopLevelCategory(t *testing.T) {
	store := storage.NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	if err := runAdd(ctx, store, []string{"expense", "12.50", "dining", "Pizza", "night"}); err != nil {
		t.Fatalf("runAdd() error = %v", err)
	}

	snap, _ := store.LoadSnapshot(ctx)
	if len(snap.Transactions) != 1 {
		t.Fatalf("got %d transactions, want 1", len(snap.Transactions))
	}
	tx := snap.Transactions[0]
	if tx.Amount.Cents != 1250 {
		t.Errorf("Amount = %d, want 1250", tx.Amount.Cents)
	}
	if tx.Description != "Pizza night" {
		t.Errorf("Description = %q, want %q", tx.Description, "Pizza night")
	}
	// A top-level category is its own main category.
	if tx.MainCategory != "dining" {
		t.Errorf("MainCategory = %q, want %q", tx.MainCategory, "dining")
	}
	if len(snap.Budgets) != 1 {
		t.Fatalf("got %d budgets, want the month reconciled", len(snap.Budgets))
	}
	if snap.Budgets[0].Balance.Cents != -1250 {
		t.Errorf("Balance = %d, want -1250", snap.Budgets[0].Balance.Cents)
	}
}

func TestRunAddSubcategoryGetsParentMainCategory(t *testing.T) {
	store := storage.NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	if err := runAdd(ctx, store, []string{"expense", "900", "rent", "March", "rent"}); err != nil {
		t.Fatalf("runAdd() error = %v", err)
	}

	snap, _ := store.LoadSnapshot(ctx)
	if got := snap.Transactions[0].MainCategory; got != "household" {
		t.Errorf("MainCategory = %q, want %q", got, "household")
	}
}

func TestRunAddIncomeFlowsThroughAllocator(t *testing.T) {
	store := storage.NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	if err := store.ReplaceSnapshot(ctx, core.Snapshot{
		Goals: []core.SavingsGoal{
			{ID: "goal-1", Name: "Vacation", TargetAmount: core.Money{Cents: 100000},
				Category: "savings", AutoAllocatePercent: 20},
		},
	}); err != nil {
		t.Fatalf("ReplaceSnapshot() error = %v", err)
	}

	if err := runAdd(ctx, store, []string{"income", "1000.00", "salary", "Salary"}); err != nil {
		t.Fatalf("runAdd() error = %v", err)
	}

	snap, _ := store.LoadSnapshot(ctx)
	if len(snap.Transactions) != 1 {
		t.Fatalf("got %d transactions, want 1", len(snap.Transactions))
	}
	tx := snap.Transactions[0]
	if !tx.IsSplit || len(tx.Splits) != 2 {
		t.Fatalf("income should be split by the allocator: %+v", tx)
	}
	if tx.Splits[0].Amount.Cents != 20000 || tx.Splits[0].Category != "savings" {
		t.Errorf("allocation split = %+v, want 20000 into savings", tx.Splits[0])
	}
	if tx.Splits[1].Amount.Cents != 80000 {
		t.Errorf("remainder split = %+v, want 80000", tx.Splits[1])
	}
	if got := snap.Goals[0].CurrentAmount.Cents; got != 20000 {
		t.Errorf("goal CurrentAmount = %d, want 20000", got)
	}
}

func TestRunAddRejectsUnknownCategory(t *testing.T) {
	store := storage.NewMemoryStore()
	defer store.Close()

	err := runAdd(context.Background(), store, []string{"expense", "10", "yachts", "Mooring"})
	if err == nil || !strings.Contains(err.Error(), "unknown category") {
		t.Fatalf("runAdd() error = %v, want unknown category rejection", err)
	}

	snap, _ := store.LoadSnapshot(context.Background())
	if len(snap.Transactions) != 0 {
		t.Errorf("rejected transaction was stored: %+v", snap.Transactions)
	}
}

func TestRunRuleAdd(t *testing.T) {
	tests := []struct {
		name             string
		args             []string
		wantMainCategory string
	}{
		{
			name:             "subcategory takes its parent",
			args:             []string{"monthly", "expense", "50", "rent", "Storage", "box"},
			wantMainCategory: "household",
		},
		{
			name:             "top-level category is its own main",
			args:             []string{"weekly", "expense", "10", "transport", "Bus", "pass"},
			wantMainCategory: "transport",
		},
		{
			name:             "income rule",
			args:             []string{"monthly", "income", "1500", "salary", "Salary"},
			wantMainCategory: "salary",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			defer store.Close()
			ctx := context.Background()

			if err := runRuleAdd(ctx, store, tt.args); err != nil {
				t.Fatalf("runRuleAdd() error = %v", err)
			}

			snap, _ := store.LoadSnapshot(ctx)
			if len(snap.Rules) != 1 {
				t.Fatalf("got %d rules, want 1", len(snap.Rules))
			}
			rule := snap.Rules[0]
			if rule.MainCategory != tt.wantMainCategory {
				t.Errorf("MainCategory = %q, want %q", rule.MainCategory, tt.wantMainCategory)
			}
			if rule.Frequency != core.Frequency(tt.args[0]) {
				t.Errorf("Frequency = %q, want %q", rule.Frequency, tt.args[0])
			}
			if rule.StartDate.IsZero() {
				t.Error("StartDate should be set")
			}
		})
	}
}

func TestRunRuleAddRejectsUnknownCategory(t *testing.T) {
	store := storage.NewMemoryStore()
	defer store.Close()

	err := runRuleAdd(context.Background(), store, []string{"monthly", "expense", "50", "yachts", "Mooring"})
	if err == nil || !strings.Contains(err.Error(), "unknown category") {
		t.Fatalf("runRuleAdd() error = %v, want unknown category rejection", err)
	}
}

func TestRunMaterialize(t *testing.T) {
	store := storage.NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	start := time.Now().UTC().AddDate(0, -2, 0)
	if err := store.ReplaceSnapshot(ctx, core.Snapshot{
		Rules: []core.RecurringRule{
			{ID: "rule-1", Description: "Rent", Amount: core.Money{Cents: 90000},
				Type: core.Expense, Category: "rent", MainCategory: "household",
				Frequency: core.Monthly, StartDate: start},
		},
	}); err != nil {
		t.Fatalf("ReplaceSnapshot() error = %v", err)
	}

	if err := runMaterialize(ctx, store); err != nil {
		t.Fatalf("runMaterialize() error = %v", err)
	}

	snap, _ := store.LoadSnapshot(ctx)
	if len(snap.Transactions) != 2 {
		t.Fatalf("got %d transactions, want 2 elapsed occurrences", len(snap.Transactions))
	}
	if snap.Rules[0].LastProcessed.IsZero() {
		t.Error("rule checkpoint should have advanced")
	}
	if len(snap.Budgets) == 0 {
		t.Error("materialized months should be reconciled")
	}
}
