package core

import (
	"errors"
	"fmt"
	"strings"
)

// Category is a registry entry. ParentID is empty for top-level
// categories; subcategories point at their parent.
type Category struct {
	ID       string
	Name     string
	ParentID string
	Type     TransactionType
	// Discretionary marks nice-to-have spend (dining out, hobbies)
	// that the advisor compares against income.
	Discretionary bool
}

// CategoryRegistry is a read-only lookup from category id to its
// definition. The engine never mutates it.
type CategoryRegistry map[string]Category

// NewCategoryRegistry validates the category set at the boundary and
// builds the lookup. Parent references must resolve within the set.
func NewCategoryRegistry(categories []Category) (CategoryRegistry, error) {
	reg := make(CategoryRegistry, len(categories))
	for _, c := range categories {
		if strings.TrimSpace(c.ID) == "" || strings.TrimSpace(c.Name) == "" {
			return nil, errors.New("category id and name are required")
		}
		if _, dup := reg[c.ID]; dup {
			return nil, fmt.Errorf("duplicate category id %q", c.ID)
		}
		reg[c.ID] = c
	}
	for _, c := range reg {
		if c.ParentID != "" {
			if _, ok := reg[c.ParentID]; !ok {
				return nil, fmt.Errorf("category %q references unknown parent %q", c.ID, c.ParentID)
			}
		}
	}
	return reg, nil
}

// Lookup returns the category for an id, if registered.
func (r CategoryRegistry) Lookup(id string) (Category, bool) {
	c, ok := r[id]
	return c, ok
}

// Children returns the ids of all direct subcategories of a parent.
func (r CategoryRegistry) Children(parentID string) []string {
	var ids []string
	for id, c := range r {
		if c.ParentID == parentID {
			ids = append(ids, id)
		}
	}
	return ids
}

// Snapshot is the whole ledger aggregate. Engine functions are pure
// transforms over a snapshot; the caller owns persistence and must
// replace the snapshot atomically after each engine call.
type Snapshot struct {
	Transactions []Transaction
	Rules        []RecurringRule
	Budgets      []MonthlyBudget
	Goals        []SavingsGoal
	Categories   CategoryRegistry
}

// BudgetFor returns the budget record for a month, if present.
func (s Snapshot) BudgetFor(month MonthKey) (MonthlyBudget, bool) {
	for _, b := range s.Budgets {
		if b.Month == month {
			return b, true
		}
	}
	return MonthlyBudget{}, false
}

// TransactionsIn returns the transactions dated inside a month.
func (s Snapshot) TransactionsIn(month MonthKey) []Transaction {
	var out []Transaction
	for _, t := range s.Transactions {
		if month.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}
