package core

import (
	"errors"
	"testing"
	"time"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:           "t1",
		Amount:       Money{Cents: 1500},
		Date:         date(2024, 1, 10),
		Description:  "groceries",
		Type:         Expense,
		Category:     "food",
		MainCategory: "household",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{ID: "x", Amount: Money{Cents: 1}, Description: "a", Type: Expense, Category: "c", MainCategory: "m"},                          // zero date
		{ID: "x", Amount: Money{Cents: 1}, Date: date(2024, 1, 1), Type: Expense, Category: "c", MainCategory: "m"},                    // empty description
		{ID: "x", Amount: Money{Cents: 0}, Date: date(2024, 1, 1), Description: "a", Type: Expense, Category: "c", MainCategory: "m"},  // zero amount
		{ID: "x", Amount: Money{Cents: 1}, Date: date(2024, 1, 1), Description: "a", Type: "refund", Category: "c", MainCategory: "m"}, // bad type
		{ID: "x", Amount: Money{Cents: 1}, Date: date(2024, 1, 1), Description: "a", Type: Expense, MainCategory: "m"},                 // empty category
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionValidateSplits(t *testing.T) {
	tx := Transaction{
		ID:           "t1",
		Amount:       Money{Cents: 1000},
		Date:         date(2024, 1, 10),
		Description:  "salary",
		Type:         Income,
		Category:     "salary",
		MainCategory: "personal",
		IsSplit:      true,
		Splits: []Split{
			{ID: "s1", Amount: Money{Cents: 400}, Category: "savings"},
			{ID: "s2", Amount: Money{Cents: 600}, Category: "salary"},
		},
	}
	if err := tx.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tx.Splits[0].Amount.Cents = 399
	if err := tx.Validate(); !errors.Is(err, ErrSplitMismatch) {
		t.Fatalf("expected ErrSplitMismatch, got %v", err)
	}

	tx.Splits = nil
	if err := tx.Validate(); err == nil {
		t.Fatal("expected error for split transaction without splits")
	}
}

func TestRecurringRuleValidate(t *testing.T) {
	good := RecurringRule{
		ID:           "r1",
		Description:  "rent",
		Amount:       Money{Cents: 90000},
		Type:         Expense,
		Category:     "rent",
		MainCategory: "household",
		Frequency:    Monthly,
		StartDate:    date(2024, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bad := good
	bad.Frequency = "biweekly"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidFrequency) {
		t.Fatalf("expected ErrInvalidFrequency, got %v", err)
	}

	bad = good
	bad.EndDate = date(2023, 12, 1)
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for end date before start date")
	}
}

func TestSavingsGoalValidate(t *testing.T) {
	good := SavingsGoal{
		ID:                  "g1",
		Name:                "holiday",
		TargetAmount:        Money{Cents: 200000},
		CurrentAmount:       Money{Cents: 50000},
		Deadline:            date(2025, 6, 1),
		Category:            "travel",
		AutoAllocatePercent: 20,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bad := good
	bad.AutoAllocatePercent = 101
	if err := bad.Validate(); !errors.Is(err, ErrInvalidPercentage) {
		t.Fatalf("expected ErrInvalidPercentage, got %v", err)
	}

	bad = good
	bad.CurrentAmount = Money{Cents: 200001}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for current above target")
	}
}

func TestNewCategoryRegistry(t *testing.T) {
	cats := []Category{
		{ID: "household", Name: "Household", Type: Expense},
		{ID: "rent", Name: "Rent", ParentID: "household", Type: Expense},
	}
	reg, err := NewCategoryRegistry(cats)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if _, ok := reg.Lookup("rent"); !ok {
		t.Fatal("expected rent to resolve")
	}
	if kids := reg.Children("household"); len(kids) != 1 || kids[0] != "rent" {
		t.Fatalf("expected [rent], got %v", kids)
	}

	if _, err := NewCategoryRegistry([]Category{{ID: "a", Name: "A", ParentID: "missing"}}); err == nil {
		t.Fatal("expected error for unknown parent")
	}
	if _, err := NewCategoryRegistry([]Category{{ID: "a", Name: "A"}, {ID: "a", Name: "B"}}); err == nil {
		t.Fatal("expected error for duplicate id")
	}
}
