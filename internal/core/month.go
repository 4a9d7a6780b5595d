// Package core holds the domain model of the ledger: money as integer
// cents, calendar month keys, transactions, recurring rules, budgets
// and savings goals.
package core

import (
	"fmt"
	"time"
)

// MonthKey identifies a calendar month as "YYYY-MM". Lexicographic
// order on keys equals chronological order, which the reconciler
// relies on when sorting months.
type MonthKey string

const monthKeyLayout = "2006-01"

// MonthKeyOf derives the month key for an instant, in UTC.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey(t.UTC().Format(monthKeyLayout))
}

// ParseMonthKey parses and normalizes a "YYYY-MM" string.
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse(monthKeyLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid month key %q want format %q: %w", s, monthKeyLayout, err)
	}
	return MonthKeyOf(t), nil
}

// Time returns midnight UTC on the first day of the month.
func (k MonthKey) Time() time.Time {
	t, err := time.Parse(monthKeyLayout, string(k))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Next returns the key of the following calendar month.
func (k MonthKey) Next() MonthKey {
	return MonthKeyOf(k.Time().AddDate(0, 1, 0))
}

// Contains reports whether the instant falls inside the month.
func (k MonthKey) Contains(t time.Time) bool {
	return MonthKeyOf(t) == k
}

// MonthRange returns every month key from first to last inclusive,
// ascending. An inverted range yields nil.
func MonthRange(first, last MonthKey) []MonthKey {
	if first == "" || last == "" || first > last {
		return nil
	}
	var keys []MonthKey
	for k := first; k <= last; k = k.Next() {
		keys = append(keys, k)
	}
	return keys
}

// MonthsUntil returns the number of whole calendar months from "now"
// until the deadline, rounding partial months up. A deadline in the
// current month or earlier yields zero or a negative count.
func MonthsUntil(now, deadline time.Time) int {
	months := (deadline.Year()-now.Year())*12 + int(deadline.Month()) - int(now.Month())
	if months == 0 && deadline.After(now) {
		return 1
	}
	return months
}
