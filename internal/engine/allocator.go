package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"bilancio/internal/core"
)

// AllocateIncome proportionally diverts an interactively added income
// transaction into the eligible savings goals, converting it into a
// split transaction. Eligible goals are funded in the list's existing
// order: first-eligible-in-list-order is the documented policy when
// the money runs out, not an iteration accident.
//
// The returned transaction and goals are fresh copies; the caller must
// persist them together as one unit. When no allocation applies the
// transaction comes back unchanged.
func AllocateIncome(ctx context.Context, tx core.Transaction, goals []core.SavingsGoal) (core.Transaction, []core.SavingsGoal, []Event, error) {
	if tx.Type != core.Income {
		return tx, goals, nil, fmt.Errorf("allocate income: transaction %s is %s, not income", tx.ID, tx.Type)
	}

	updated := make([]core.SavingsGoal, len(goals))
	copy(updated, goals)

	remaining := tx.Amount
	var splits []core.Split
	var events []Event

	for i := range updated {
		goal := &updated[i]
		if goal.Completed || goal.AutoAllocatePercent <= 0 {
			continue
		}

		desired := percentOf(tx.Amount, goal.AutoAllocatePercent)
		allocation := desired
		if room := goal.Remaining(); allocation.Cents > room.Cents {
			allocation = room
		}
		if allocation.Cents <= 0 || remaining.Cents < allocation.Cents {
			continue
		}

		goal.CurrentAmount = goal.CurrentAmount.Add(allocation)
		remaining = remaining.Sub(allocation)

		splits = append(splits, core.Split{
			ID:           uuid.NewString(),
			Amount:       allocation,
			Category:     goal.Category,
			MainCategory: "personal",
			Description:  "Auto-allocation to " + goal.Name,
		})
		events = append(events, info(fmt.Sprintf("Allocated %s to savings goal %q", allocation, goal.Name)))

		slog.InfoContext(ctx, "Auto-allocated income to savings goal",
			"transaction_id", tx.ID,
			"goal_name", goal.Name,
			"amount_cents", allocation.Cents,
			"goal_current_cents", goal.CurrentAmount.Cents)

		if goal.CurrentAmount.Cents >= goal.TargetAmount.Cents {
			goal.Completed = true
			events = append(events, success(fmt.Sprintf("Savings goal %q completed", goal.Name)))
		}
	}

	if len(splits) == 0 {
		return tx, updated, nil, nil
	}

	splits = append(splits, core.Split{
		ID:           uuid.NewString(),
		Amount:       remaining,
		Category:     tx.Category,
		MainCategory: tx.MainCategory,
		Description:  tx.Description,
	})

	adjusted := tx
	adjusted.IsSplit = true
	adjusted.Splits = splits
	events = append(events, info(fmt.Sprintf("Transaction split into %d parts", len(splits))))

	// Money correctness is the whole point: a drifting split sum is a
	// programming error and must never be coerced.
	var sum int64
	for _, s := range adjusted.Splits {
		sum += s.Amount.Cents
	}
	if sum != adjusted.Amount.Cents {
		return core.Transaction{}, nil, nil, fmt.Errorf("allocate income: transaction %s: %w (splits %d, amount %d)",
			tx.ID, core.ErrSplitMismatch, sum, adjusted.Amount.Cents)
	}

	return adjusted, updated, events, nil
}

// percentOf computes pct% of an amount in cents, rounding half-up.
func percentOf(m core.Money, pct int) core.Money {
	return core.Money{Cents: (m.Cents*int64(pct) + 50) / 100}
}
