package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
)

const occurrenceDateLayout = "2006-01-02"

// Materialize walks every rule from its checkpoint to now and emits one
// concrete transaction per elapsed period. It returns the new
// transactions and the full rule set with advanced checkpoints; inputs
// are not mutated.
//
// Calling Materialize again with the same now and the returned rules
// yields no new transactions. Rules whose start date is in the future,
// or whose end date has passed, are skipped silently.
//
// Materialized transactions are plain even when their type is income:
// savings auto-allocation applies only to interactively added income.
func Materialize(ctx context.Context, rules []core.RecurringRule, existing []core.Transaction, now time.Time) ([]core.Transaction, []core.RecurringRule, error) {
	seen := occurrenceIndex(existing)

	var created []core.Transaction
	updated := make([]core.RecurringRule, len(rules))
	for i, rule := range rules {
		updated[i] = rule

		if rule.StartDate.After(now) {
			continue
		}
		if !rule.EndDate.IsZero() && now.After(rule.EndDate) {
			continue
		}

		stepper, err := StepperFor(rule.Frequency)
		if err != nil {
			return nil, nil, fmt.Errorf("rule %s: %w", rule.ID, err)
		}

		cursor := rule.LastProcessed
		if cursor.IsZero() {
			cursor = rule.StartDate
		}

		advanced := false
		for next := stepper.Next(cursor); !next.After(now); next = stepper.Next(cursor) {
			cursor = next
			advanced = true

			key := occurrenceKey(rule.ID, next)
			if _, dup := seen[key]; dup {
				// Already materialized in a previous run whose
				// checkpoint update was lost; do not bill twice.
				continue
			}
			seen[key] = struct{}{}

			created = append(created, core.Transaction{
				ID:              uuid.NewString(),
				Amount:          rule.Amount,
				Date:            next,
				Description:     rule.Description,
				Type:            rule.Type,
				Category:        rule.Category,
				MainCategory:    rule.MainCategory,
				RecurringRuleID: rule.ID,
			})
		}

		if advanced {
			updated[i].LastProcessed = cursor
			slog.InfoContext(ctx, "Materialized recurring rule",
				"rule_id", rule.ID,
				"description", rule.Description,
				"frequency", rule.Frequency,
				"last_processed", cursor.Format(occurrenceDateLayout))
		}
	}

	slog.InfoContext(ctx, "Recurring materialization complete",
		"rules_checked", len(rules),
		"transactions_created", len(created),
		"as_of", now.Format(occurrenceDateLayout))

	return created, updated, nil
}

// occurrenceIndex keys existing materialized transactions by rule and
// occurrence day so catch-up runs never duplicate them.
func occurrenceIndex(transactions []core.Transaction) map[string]struct{} {
	idx := make(map[string]struct{})
	for _, t := range transactions {
		if t.RecurringRuleID == "" {
			continue
		}
		idx[occurrenceKey(t.RecurringRuleID, t.Date)] = struct{}{}
	}
	return idx
}

func occurrenceKey(ruleID string, on time.Time) string {
	return ruleID + "@" + on.UTC().Format(occurrenceDateLayout)
}
