// Package engine implements the ledger reconciliation core: recurring
// transaction materialization, monthly balance reconciliation with
// carry-forward, proportional savings allocation, and budget insights.
//
// Every function in this package is a pure transform over snapshot
// slices: inputs are never mutated, callers own persistence and must
// commit returned state atomically.
package engine

import (
	"fmt"
	"time"

	"bilancio/internal/core"
)

// OccurrenceStepper is the strategy interface for advancing a recurring
// rule's cursor by one period. Each frequency has its own stepper.
type OccurrenceStepper interface {
	// Next returns the occurrence that follows cursor.
	Next(cursor time.Time) time.Time
}

// ErrUnknownFrequency signals a frequency that slipped past rule
// validation. This is a programmer error, not user input.
var ErrUnknownFrequency = fmt.Errorf("unknown frequency: %w", core.ErrInvalidFrequency)

// WeeklyStepper advances the cursor by exactly seven days.
type WeeklyStepper struct{}

func (WeeklyStepper) Next(cursor time.Time) time.Time {
	return cursor.AddDate(0, 0, 7)
}

// MonthSpanStepper advances the cursor by a fixed number of calendar
// months, clamping the day to the target month's natural length
// (Jan 31 + 1 month lands on Feb 29 in a leap year, Feb 28 otherwise).
type MonthSpanStepper struct {
	Months int
}

func (s MonthSpanStepper) Next(cursor time.Time) time.Time {
	return addMonthsClamped(cursor, s.Months)
}

// YearlyStepper advances the cursor by one year, clamping Feb 29 to
// Feb 28 in non-leap years.
type YearlyStepper struct{}

func (YearlyStepper) Next(cursor time.Time) time.Time {
	return addMonthsClamped(cursor, 12)
}

// addMonthsClamped is the calendar arithmetic behind all month-based
// frequencies. time.AddDate normalizes overflow (Jan 31 + 1 month =
// Mar 2); budgeting wants the clamped day instead.
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := lastDayOfMonth(firstOfTarget); d > last {
		d = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// steppers maps frequencies to their corresponding stepper. The set is
// fixed; frequencies are validated at rule construction.
var steppers = map[core.Frequency]OccurrenceStepper{
	core.Weekly:    WeeklyStepper{},
	core.Monthly:   MonthSpanStepper{Months: 1},
	core.Quarterly: MonthSpanStepper{Months: 3},
	core.Yearly:    YearlyStepper{},
}

// StepperFor returns the stepper for a frequency, or
// ErrUnknownFrequency for anything outside the fixed set.
func StepperFor(frequency core.Frequency) (OccurrenceStepper, error) {
	s, ok := steppers[frequency]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrequency, frequency)
	}
	return s, nil
}
