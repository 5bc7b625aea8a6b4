package calculator

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mmynk/housesplit/internal/models"
)

// Balances maps a member to their net position: positive means the member is owed
// money, negative means the member owes money.
type Balances map[models.MemberID]decimal.Decimal

// MemberBalance is one entry of a balance map in canonical order.
type MemberBalance struct {
	Member models.MemberID
	Amount decimal.Decimal
}

// AggregateBalances sums the contributions of every expense belonging to one of periods.
// With no periods, every expense is included. Nothing is rounded here.
//
// Malformed expenses (see ResolveSplit) are skipped rather than failing the whole
// aggregation.
func AggregateBalances(expenses []models.Expense, periods ...models.Period) Balances {
	balances := make(Balances)
	for _, e := range expenses {
		if len(periods) > 0 && !slices.Contains(periods, e.Period) {
			continue
		}
		for id, amount := range ResolveSplit(e) {
			balances[id] = balances[id].Add(amount)
		}
	}
	return balances
}

// Total returns the sum of all balances. It is zero (within rounding) for any set of
// expenses, since each expense credits exactly what it debits.
func (b Balances) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range b {
		total = total.Add(v)
	}
	return total
}

// Clone returns an independent copy of b.
func (b Balances) Clone() Balances {
	out := make(Balances, len(b))
	for id, v := range b {
		out[id] = v
	}
	return out
}

// Ordered returns the balances as a slice in canonical order: members listed in order
// come first (zero balances included), followed by any other member in b sorted by id.
func (b Balances) Ordered(order []models.MemberID) []MemberBalance {
	out := make([]MemberBalance, 0, len(b)+len(order))
	seen := make(map[models.MemberID]bool, len(order))
	for _, id := range order {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, MemberBalance{Member: id, Amount: b[id]})
	}

	var extra []models.MemberID
	for id := range b {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	slices.Sort(extra)
	for _, id := range extra {
		out = append(out, MemberBalance{Member: id, Amount: b[id]})
	}
	return out
}
