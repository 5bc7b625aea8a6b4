// Package calculator derives balances and transfer plans from immutable snapshots of
// expenses and settlements. Every function is pure: it takes records as arguments and
// returns freshly computed values.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/housesplit/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Contributions maps a member to a signed amount: positive is a credit, negative a debit.
type Contributions map[models.MemberID]decimal.Decimal

// ResolveSplit converts one expense into per-member contributions.
//
// The payer is credited the full amount and each participant is debited their share:
//   - EqualSplit: amount / len(participants), kept at full precision
//   - AmountSplit: the listed share
//   - PercentSplit: amount * share / 100
//
// A payer who is not a participant gets no offsetting debit. Expenses with a
// non-positive amount, no payer, no participants or custom shares outside tolerance
// resolve to nil so aggregation can skip them without breaking conservation.
func ResolveSplit(e models.Expense) Contributions {
	if !e.Amount.IsPositive() || e.Payer == "" || len(e.Participants) == 0 {
		return nil
	}

	c := Contributions{e.Payer: e.Amount}

	switch s := e.Split.(type) {
	case models.AmountSplit:
		if !models.AmountSharesBalanced(e.Amount, s.Shares) {
			return nil
		}
		for id, share := range s.Shares {
			c[id] = c[id].Sub(share)
		}
	case models.PercentSplit:
		if !models.PercentSharesBalanced(s.Shares) {
			return nil
		}
		for id, pct := range s.Shares {
			c[id] = c[id].Sub(e.Amount.Mul(pct).Div(hundred))
		}
	default:
		share := e.Amount.Div(decimal.NewFromInt(int64(len(e.Participants))))
		for _, id := range e.Participants {
			c[id] = c[id].Sub(share)
		}
	}

	return c
}
