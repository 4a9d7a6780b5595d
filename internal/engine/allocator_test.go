package engine

import (
	"context"
	"testing"

	"bilancio/internal/core"
)

func incomeTx(cents int64) core.Transaction {
	return core.Transaction{
		ID:           "t1",
		Amount:       core.Money{Cents: cents},
		Date:         day(2024, 1, 10),
		Description:  "salary",
		Type:         core.Income,
		Category:     "salary",
		MainCategory: "personal",
	}
}

func goal(name string, pct int, target, current int64) core.SavingsGoal {
	return core.SavingsGoal{
		ID:                  name,
		Name:                name,
		TargetAmount:        core.Money{Cents: target},
		CurrentAmount:       core.Money{Cents: current},
		Deadline:            day(2025, 1, 1),
		Category:            "savings",
		AutoAllocatePercent: pct,
	}
}

func splitSum(tx core.Transaction) int64 {
	var sum int64
	for _, s := range tx.Splits {
		sum += s.Amount.Cents
	}
	return sum
}

func TestAllocateIncomeSpecScenario(t *testing.T) {
	// 5000.00 income; goal A wants 20% with 2000.00 missing, goal B
	// wants 30% with only 500.00 missing.
	goals := []core.SavingsGoal{
		goal("A", 20, 500000, 300000),
		goal("B", 30, 100000, 50000),
	}

	adjusted, updated, events, err := AllocateIncome(context.Background(), incomeTx(500000), goals)
	if err != nil {
		t.Fatalf("AllocateIncome error: %v", err)
	}

	if !adjusted.IsSplit || len(adjusted.Splits) != 3 {
		t.Fatalf("expected 3 splits, got %d (isSplit=%v)", len(adjusted.Splits), adjusted.IsSplit)
	}
	if adjusted.Splits[0].Amount.Cents != 100000 { // min(20% of 5000, 2000)
		t.Errorf("goal A allocation = %d, want 100000", adjusted.Splits[0].Amount.Cents)
	}
	if adjusted.Splits[1].Amount.Cents != 50000 { // min(30% of 5000, 500)
		t.Errorf("goal B allocation = %d, want 50000", adjusted.Splits[1].Amount.Cents)
	}
	if adjusted.Splits[2].Amount.Cents != 350000 {
		t.Errorf("remainder = %d, want 350000", adjusted.Splits[2].Amount.Cents)
	}
	if adjusted.Splits[2].Category != "salary" {
		t.Errorf("remainder keeps the original category, got %q", adjusted.Splits[2].Category)
	}
	if splitSum(adjusted) != adjusted.Amount.Cents {
		t.Errorf("splits sum %d != amount %d", splitSum(adjusted), adjusted.Amount.Cents)
	}

	if updated[0].CurrentAmount.Cents != 400000 || updated[0].Completed {
		t.Errorf("goal A: current %d completed %v", updated[0].CurrentAmount.Cents, updated[0].Completed)
	}
	if updated[1].CurrentAmount.Cents != 100000 || !updated[1].Completed {
		t.Errorf("goal B must be completed at 100000, got %d completed=%v",
			updated[1].CurrentAmount.Cents, updated[1].Completed)
	}

	// Two allocation infos, one completion, one split summary.
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d: %v", len(events), events)
	}
	if events[2].Type != EventSuccess {
		t.Errorf("expected completion success event, got %v", events[2])
	}
}

func TestAllocateIncomeSplitConservation(t *testing.T) {
	// Awkward percentages across many goals must still conserve cents.
	goals := []core.SavingsGoal{
		goal("a", 7, 1000000, 0),
		goal("b", 13, 1000000, 0),
		goal("c", 11, 1000000, 0),
		goal("d", 3, 1000000, 0),
	}

	adjusted, _, _, err := AllocateIncome(context.Background(), incomeTx(33333), goals)
	if err != nil {
		t.Fatalf("AllocateIncome error: %v", err)
	}
	if splitSum(adjusted) != 33333 {
		t.Fatalf("splits sum %d, want 33333", splitSum(adjusted))
	}
}

func TestAllocateIncomeCap(t *testing.T) {
	// Percentages above 100% in aggregate never push a goal past its
	// target and never allocate more than the transaction carries.
	goals := []core.SavingsGoal{
		goal("a", 80, 50000, 0),
		goal("b", 80, 1000000, 0),
	}

	adjusted, updated, _, err := AllocateIncome(context.Background(), incomeTx(100000), goals)
	if err != nil {
		t.Fatalf("AllocateIncome error: %v", err)
	}
	if updated[0].CurrentAmount.Cents != 50000 {
		t.Errorf("goal a capped at target, got %d", updated[0].CurrentAmount.Cents)
	}
	for _, g := range updated {
		if g.CurrentAmount.Cents > g.TargetAmount.Cents {
			t.Errorf("goal %s exceeded target: %d > %d", g.Name, g.CurrentAmount.Cents, g.TargetAmount.Cents)
		}
	}
	if splitSum(adjusted) != 100000 {
		t.Errorf("splits sum %d, want 100000", splitSum(adjusted))
	}
}

func TestAllocateIncomeListOrderPolicy(t *testing.T) {
	// When money runs out, goals earlier in the list win; the second
	// goal's full desired allocation no longer fits and is skipped.
	goals := []core.SavingsGoal{
		goal("first", 90, 1000000, 0),
		goal("second", 90, 1000000, 0),
	}

	_, updated, _, err := AllocateIncome(context.Background(), incomeTx(100000), goals)
	if err != nil {
		t.Fatalf("AllocateIncome error: %v", err)
	}
	if updated[0].CurrentAmount.Cents != 90000 {
		t.Errorf("first goal = %d, want 90000", updated[0].CurrentAmount.Cents)
	}
	if updated[1].CurrentAmount.Cents != 0 {
		t.Errorf("second goal = %d, want 0 (insufficient remaining)", updated[1].CurrentAmount.Cents)
	}
}

func TestAllocateIncomeSkipsCompletedAndZeroPercent(t *testing.T) {
	done := goal("done", 50, 100000, 100000)
	done.Completed = true
	passive := goal("passive", 0, 100000, 0)

	adjusted, updated, events, err := AllocateIncome(context.Background(), incomeTx(50000),
		[]core.SavingsGoal{done, passive})
	if err != nil {
		t.Fatalf("AllocateIncome error: %v", err)
	}
	if adjusted.IsSplit || len(adjusted.Splits) != 0 || len(events) != 0 {
		t.Error("expected transaction to pass through unchanged")
	}
	// Completion is monotonic: a completed goal never gains funds.
	if updated[0].CurrentAmount.Cents != 100000 || !updated[0].Completed {
		t.Error("completed goal was touched")
	}
}

func TestAllocateIncomeRejectsNonIncome(t *testing.T) {
	tx := incomeTx(1000)
	tx.Type = core.Expense
	if _, _, _, err := AllocateIncome(context.Background(), tx, nil); err == nil {
		t.Fatal("expected error for non-income transaction")
	}
}
