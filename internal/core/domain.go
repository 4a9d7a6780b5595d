package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income     TransactionType = "income"
	Expense    TransactionType = "expense"
	Investment TransactionType = "investment"
)

const (
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

type (
	TransactionType string

	Frequency string

	Money struct {
		Cents int64
	}

	// Split is a sub-amount of a parent transaction, used for category
	// reporting only. It never exists outside its parent.
	Split struct {
		ID           string
		Amount       Money
		Category     string
		MainCategory string
		Description  string
	}

	Transaction struct {
		ID              string
		Amount          Money
		Date            time.Time // instant, UTC
		Description     string
		Type            TransactionType
		Category        string
		MainCategory    string
		RecurringRuleID string // empty unless materialized from a rule
		IsSplit         bool
		Splits          []Split
	}

	// RecurringRule is a template that the materializer turns into
	// concrete transactions as time advances. LastProcessed is the
	// checkpoint: the date of the most recently emitted occurrence.
	RecurringRule struct {
		ID            string
		Description   string
		Amount        Money
		Type          TransactionType
		Category      string
		MainCategory  string
		Frequency     Frequency
		StartDate     time.Time
		EndDate       time.Time // zero means open-ended
		LastProcessed time.Time // zero means never materialized
	}

	// MonthlyBudget holds the user goals and the derived balance for one
	// calendar month. Balance is written exclusively by the reconciler.
	MonthlyBudget struct {
		Month          MonthKey
		IncomeGoal     Money
		ExpenseLimit   Money
		InvestmentGoal Money
		CategoryLimits map[string]Money
		Balance        Money
	}

	SavingsGoal struct {
		ID                  string
		Name                string
		TargetAmount        Money
		CurrentAmount       Money
		Deadline            time.Time
		Category            string
		AutoAllocatePercent int // 0-100
		Completed           bool
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrInvalidFrequency  = errors.New("invalid frequency")
	ErrInvalidPercentage = errors.New("auto-allocate percentage must be between 0 and 100")
	ErrEmptyDescription  = errors.New("empty description")
	ErrEmptyCategory     = errors.New("empty category")
	ErrEmptyName         = errors.New("empty name")
	ErrSplitMismatch     = errors.New("split amounts do not sum to transaction amount")
)

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

// Sub returns m minus o. The result may be negative (running balances).
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// IsZero reports whether the amount is exactly zero cents.
func (m Money) IsZero() bool { return m.Cents == 0 }

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense, Investment:
		return nil
	default:
		return ErrInvalidType
	}
}

func (f Frequency) Validate() error {
	switch f {
	case Weekly, Monthly, Quarterly, Yearly:
		return nil
	default:
		return ErrInvalidFrequency
	}
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" || strings.TrimSpace(t.MainCategory) == "" {
		return ErrEmptyCategory
	}
	if t.IsSplit {
		return t.validateSplits()
	}
	if len(t.Splits) > 0 {
		return errors.New("splits present on a non-split transaction")
	}
	return nil
}

// validateSplits reconciles the split sum at creation time. It is not
// re-checked continuously; the allocator guarantees it on its output.
func (t Transaction) validateSplits() error {
	if len(t.Splits) == 0 {
		return errors.New("split transaction has no splits")
	}
	var sum int64
	for _, s := range t.Splits {
		if err := s.Amount.Validate(); err != nil {
			return err
		}
		if strings.TrimSpace(s.Category) == "" {
			return ErrEmptyCategory
		}
		sum += s.Amount.Cents
	}
	if sum != t.Amount.Cents {
		return ErrSplitMismatch
	}
	return nil
}

func (r RecurringRule) Validate() error {
	if r.StartDate.IsZero() {
		return errors.New("invalid start date: " + ErrInvalidDate.Error())
	}
	if !r.EndDate.IsZero() && r.EndDate.Before(r.StartDate) {
		return errors.New("end date must not be before start date")
	}
	if err := r.Frequency.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(r.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(r.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if err := r.Type.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Category) == "" || strings.TrimSpace(r.MainCategory) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if len(strings.TrimSpace(g.Name)) == 0 {
		return ErrEmptyName
	}
	if err := g.TargetAmount.Validate(); err != nil {
		return err
	}
	if g.CurrentAmount.Cents < 0 || g.CurrentAmount.Cents > g.TargetAmount.Cents {
		return errors.New("current amount must be between zero and the target")
	}
	if g.AutoAllocatePercent < 0 || g.AutoAllocatePercent > 100 {
		return ErrInvalidPercentage
	}
	if strings.TrimSpace(g.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Remaining returns how much is still missing to reach the target.
func (g SavingsGoal) Remaining() Money {
	return g.TargetAmount.Sub(g.CurrentAmount)
}

func (b MonthlyBudget) Validate() error {
	if _, err := ParseMonthKey(string(b.Month)); err != nil {
		return err
	}
	return nil
}
