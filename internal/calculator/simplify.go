package calculator

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mmynk/housesplit/internal/models"
)

// Epsilon is the threshold below which an amount is treated as zero.
var Epsilon = decimal.RequireFromString("0.01")

// Transfer is a suggested payment that moves balances toward zero.
type Transfer struct {
	From   models.MemberID // Person who owes
	To     models.MemberID // Person who is owed
	Amount decimal.Decimal
}

type position struct {
	member models.MemberID
	amount decimal.Decimal
}

// SimplifyDebts turns balances into an ordered list of transfers that zero them.
//
// Algorithm:
//   - Round every balance to cents. Members below -0.01 are debtors (stored as the owed
//     magnitude), members above 0.01 are creditors.
//   - Sort both lists by descending magnitude. The sort is stable, so ties keep the
//     order of the input; pass balances in canonical member order for reproducible
//     output.
//   - Walk both lists with two cursors, transferring min(debt, credit) at each step and
//     emitting transfers above 0.01. Advance each cursor whose remaining amount falls
//     below 0.01.
//
// The greedy match yields at most n-1 transfers for n non-zero members but is not
// guaranteed to use the fewest possible transfers.
func SimplifyDebts(balances []MemberBalance) []Transfer {
	var debtors, creditors []position
	for _, b := range balances {
		rounded := b.Amount.Round(2)
		if rounded.LessThan(Epsilon.Neg()) {
			debtors = append(debtors, position{member: b.Member, amount: rounded.Neg()})
		} else if rounded.GreaterThan(Epsilon) {
			creditors = append(creditors, position{member: b.Member, amount: rounded})
		}
	}

	byMagnitude := func(a, b position) int { return b.amount.Cmp(a.amount) }
	slices.SortStableFunc(debtors, byMagnitude)
	slices.SortStableFunc(creditors, byMagnitude)

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		d, c := &debtors[i], &creditors[j]

		amount := decimal.Min(d.amount, c.amount)
		if amount.GreaterThan(Epsilon) {
			transfers = append(transfers, Transfer{From: d.member, To: c.member, Amount: amount})
		}

		d.amount = d.amount.Sub(amount)
		c.amount = c.amount.Sub(amount)

		if d.amount.LessThan(Epsilon) {
			i++
		}
		if c.amount.LessThan(Epsilon) {
			j++
		}
	}

	return transfers
}

// ApplyTransfers returns balances after every transfer has been paid: the sender's
// balance rises and the receiver's falls by the transfer amount.
func ApplyTransfers(b Balances, transfers []Transfer) Balances {
	out := b.Clone()
	for _, t := range transfers {
		out[t.From] = out[t.From].Add(t.Amount)
		out[t.To] = out[t.To].Sub(t.Amount)
	}
	return out
}
