package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitKind is the persisted name of a split strategy.
type SplitKind string

const (
	SplitEqual   SplitKind = "equal"
	SplitAmount  SplitKind = "amount"
	SplitPercent SplitKind = "percent"
)

// SplitStrategy is the rule used to divide an expense among its participants.
// The set of implementations is closed: EqualSplit, AmountSplit and PercentSplit.
type SplitStrategy interface {
	Kind() SplitKind
	isSplitStrategy()
}

// EqualSplit divides the amount evenly among all participants.
type EqualSplit struct{}

// AmountSplit assigns each participant a fixed amount. The shares must add up to the
// expense amount within AmountTolerance.
type AmountSplit struct {
	Shares map[MemberID]decimal.Decimal
}

// PercentSplit assigns each participant a percentage of the amount. The shares must add
// up to 100 within PercentTolerance.
type PercentSplit struct {
	Shares map[MemberID]decimal.Decimal
}

func (EqualSplit) Kind() SplitKind   { return SplitEqual }
func (AmountSplit) Kind() SplitKind  { return SplitAmount }
func (PercentSplit) Kind() SplitKind { return SplitPercent }

func (EqualSplit) isSplitStrategy()   {}
func (AmountSplit) isSplitStrategy()  {}
func (PercentSplit) isSplitStrategy() {}

// SplitShares returns the share map carried by s, or nil for EqualSplit.
func SplitShares(s SplitStrategy) map[MemberID]decimal.Decimal {
	switch v := s.(type) {
	case AmountSplit:
		return v.Shares
	case PercentSplit:
		return v.Shares
	default:
		return nil
	}
}

// NewSplitStrategy builds the variant named by kind. Shares are ignored for SplitEqual.
func NewSplitStrategy(kind SplitKind, shares map[MemberID]decimal.Decimal) (SplitStrategy, error) {
	switch kind {
	case SplitEqual, "":
		return EqualSplit{}, nil
	case SplitAmount:
		return AmountSplit{Shares: shares}, nil
	case SplitPercent:
		return PercentSplit{Shares: shares}, nil
	default:
		return nil, &ValidationError{Field: "split_strategy", Err: ErrUnknownStrategy, Detail: string(kind)}
	}
}

// Expense is one recorded outlay.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// Amount is the total paid. Always positive for admitted expenses.
	Amount decimal.Decimal

	// Payer is credited the full amount. The payer need not be a participant.
	Payer MemberID

	// Participants are the members debited for the expense.
	Participants []MemberID

	// Split decides how Amount is divided among Participants.
	Split SplitStrategy

	// Period is the month the expense belongs to.
	Period Period

	// Category, Description and Note are display metadata; the engine ignores them.
	Category    string
	Description string
	Note        string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewExpense validates e and returns it ready to be admitted to the engine.
func NewExpense(e Expense) (Expense, error) {
	if e.Split == nil {
		e.Split = EqualSplit{}
	}
	if err := e.Validate(); err != nil {
		return Expense{}, err
	}
	return e, nil
}

// HasParticipant reports whether id is debited by the expense.
func (e Expense) HasParticipant(id MemberID) bool {
	for _, p := range e.Participants {
		if p == id {
			return true
		}
	}
	return false
}
