package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNonPositiveAmount   = errors.New("amount must be positive")
	ErrNoParticipants      = errors.New("at least one participant is required")
	ErrDuplicateMember     = errors.New("participant listed more than once")
	ErrMissingPayer        = errors.New("payer is required")
	ErrUnknownMember       = errors.New("unknown member")
	ErrUnknownStrategy     = errors.New("unknown split strategy")
	ErrMissingShare        = errors.New("participant has no share")
	ErrShareNotParticipant = errors.New("share assigned to a non-participant")
	ErrNegativeShare       = errors.New("share must not be negative")
	ErrShareTotal          = errors.New("shares do not add up")
	ErrInvalidPeriod       = errors.New("period must be in YYYY-MM form")
)

var (
	// AmountTolerance is the allowed drift between the sum of AmountSplit shares and
	// the expense amount.
	AmountTolerance = decimal.RequireFromString("0.02")

	// PercentTolerance is the allowed drift between the sum of PercentSplit shares and 100.
	PercentTolerance = decimal.RequireFromString("0.5")

	hundred = decimal.NewFromInt(100)
)

// ValidationError describes why an expense was rejected.
type ValidationError struct {
	Field  string
	Err    error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v (%s)", e.Field, e.Err, e.Detail)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// SumShares adds up every share value.
func SumShares(shares map[MemberID]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range shares {
		total = total.Add(v)
	}
	return total
}

// AmountSharesBalanced reports whether fixed shares add up to amount within AmountTolerance.
func AmountSharesBalanced(amount decimal.Decimal, shares map[MemberID]decimal.Decimal) bool {
	return SumShares(shares).Sub(amount).Abs().LessThanOrEqual(AmountTolerance)
}

// PercentSharesBalanced reports whether percentage shares add up to 100 within PercentTolerance.
func PercentSharesBalanced(shares map[MemberID]decimal.Decimal) bool {
	return SumShares(shares).Sub(hundred).Abs().LessThanOrEqual(PercentTolerance)
}

// Validate checks every invariant an expense must hold before the engine accepts it.
// Share data is never adjusted; a total outside tolerance is reported as an error.
func (e Expense) Validate() error {
	if !e.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Err: ErrNonPositiveAmount, Detail: e.Amount.String()}
	}
	if e.Payer == "" {
		return &ValidationError{Field: "payer", Err: ErrMissingPayer}
	}
	if len(e.Participants) == 0 {
		return &ValidationError{Field: "participants", Err: ErrNoParticipants}
	}
	seen := make(map[MemberID]bool, len(e.Participants))
	for _, p := range e.Participants {
		if seen[p] {
			return &ValidationError{Field: "participants", Err: ErrDuplicateMember, Detail: string(p)}
		}
		seen[p] = true
	}
	if !e.Period.Valid() {
		return &ValidationError{Field: "period", Err: ErrInvalidPeriod, Detail: string(e.Period)}
	}

	switch s := e.Split.(type) {
	case EqualSplit:
		return nil
	case AmountSplit:
		if err := validateShares(s.Shares, seen); err != nil {
			return err
		}
		if !AmountSharesBalanced(e.Amount, s.Shares) {
			return &ValidationError{
				Field:  "shares",
				Err:    ErrShareTotal,
				Detail: fmt.Sprintf("shares total %s, amount is %s", SumShares(s.Shares).StringFixed(2), e.Amount.StringFixed(2)),
			}
		}
		return nil
	case PercentSplit:
		if err := validateShares(s.Shares, seen); err != nil {
			return err
		}
		if !PercentSharesBalanced(s.Shares) {
			return &ValidationError{
				Field:  "shares",
				Err:    ErrShareTotal,
				Detail: fmt.Sprintf("percentages total %s%%, must be 100%%", SumShares(s.Shares).StringFixed(1)),
			}
		}
		return nil
	default:
		return &ValidationError{Field: "split_strategy", Err: ErrUnknownStrategy}
	}
}

// CheckMembers reports the first payer or participant not present in known.
func (e Expense) CheckMembers(known map[MemberID]bool) error {
	if !known[e.Payer] {
		return &ValidationError{Field: "payer", Err: ErrUnknownMember, Detail: string(e.Payer)}
	}
	for _, p := range e.Participants {
		if !known[p] {
			return &ValidationError{Field: "participants", Err: ErrUnknownMember, Detail: string(p)}
		}
	}
	return nil
}

func validateShares(shares map[MemberID]decimal.Decimal, participants map[MemberID]bool) error {
	for id, v := range shares {
		if !participants[id] {
			return &ValidationError{Field: "shares", Err: ErrShareNotParticipant, Detail: string(id)}
		}
		if v.IsNegative() {
			return &ValidationError{Field: "shares", Err: ErrNegativeShare, Detail: string(id)}
		}
	}
	for id := range participants {
		if _, ok := shares[id]; !ok {
			return &ValidationError{Field: "shares", Err: ErrMissingShare, Detail: string(id)}
		}
	}
	return nil
}
