package storage

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"bilancio/internal/core"
)

// MemoryStore keeps the ledger in process memory. It is the backend for
// tests and for trying the tool without a database file.
type MemoryStore struct {
	mu   sync.RWMutex
	snap core.Snapshot
}

func NewMemoryStore() *MemoryStore {
	registry, err := core.NewCategoryRegistry(defaultCategories())
	if err != nil {
		// The seed list is static, a failure here is a programming error.
		panic(fmt.Sprintf("storage: invalid default categories: %v", err))
	}
	return &MemoryStore{snap: core.Snapshot{Categories: registry}}
}

func (s *MemoryStore) LoadSnapshot(ctx context.Context) (core.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSnapshot(s.snap), nil
}

func (s *MemoryStore) ReplaceSnapshot(ctx context.Context, snap core.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	categories := s.snap.Categories
	s.snap = cloneSnapshot(snap)
	s.snap.Categories = categories
	return nil
}

func (s *MemoryStore) DeleteRule(ctx context.Context, ruleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.Transactions = slices.DeleteFunc(s.snap.Transactions, func(t core.Transaction) bool {
		return t.RecurringRuleID == ruleID
	})
	s.snap.Rules = slices.DeleteFunc(s.snap.Rules, func(r core.RecurringRule) bool {
		return r.ID == ruleID
	})
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func cloneSnapshot(snap core.Snapshot) core.Snapshot {
	out := core.Snapshot{
		Transactions: make([]core.Transaction, len(snap.Transactions)),
		Rules:        slices.Clone(snap.Rules),
		Budgets:      make([]core.MonthlyBudget, len(snap.Budgets)),
		Goals:        slices.Clone(snap.Goals),
		Categories:   snap.Categories,
	}
	for i, t := range snap.Transactions {
		t.Splits = slices.Clone(t.Splits)
		out.Transactions[i] = t
	}
	for i, b := range snap.Budgets {
		b.CategoryLimits = maps.Clone(b.CategoryLimits)
		out.Budgets[i] = b
	}
	return out
}

// defaultCategories mirrors the seed migration so both backends start
// from the same registry.
func defaultCategories() []core.Category {
	return []core.Category{
		{ID: "salary", Name: "Salary", Type: core.Income},
		{ID: "tuition", Name: "Tuition fees", Type: core.Income},
		{ID: "household", Name: "Household", Type: core.Expense},
		{ID: "rent", Name: "Rent", ParentID: "household", Type: core.Expense},
		{ID: "utilities", Name: "Utilities", ParentID: "household", Type: core.Expense},
		{ID: "groceries", Name: "Groceries", ParentID: "household", Type: core.Expense},
		{ID: "transport", Name: "Transport", Type: core.Expense},
		{ID: "health", Name: "Health", Type: core.Expense},
		{ID: "kids", Name: "Kids", Type: core.Expense},
		{ID: "dining", Name: "Dining out", Type: core.Expense, Discretionary: true},
		{ID: "entertainment", Name: "Entertainment", Type: core.Expense, Discretionary: true},
		{ID: "travel", Name: "Travel", Type: core.Expense, Discretionary: true},
		{ID: "savings", Name: "Savings", Type: core.Investment},
		{ID: "stocks", Name: "Stocks", ParentID: "savings", Type: core.Investment},
	}
}
