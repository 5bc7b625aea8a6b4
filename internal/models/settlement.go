package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the progress of a settlement.
type Status string

const (
	// StatusPending means no settlement record exists yet for the pair.
	StatusPending Status = "pending"
	// StatusPaid means the debtor reported the transfer.
	StatusPaid Status = "paid"
	// StatusConfirmed means the creditor acknowledged receipt. Terminal.
	StatusConfirmed Status = "confirmed"
)

// rank orders statuses so transitions can be checked for monotonicity.
func (s Status) rank() int {
	switch s {
	case StatusPaid:
		return 1
	case StatusConfirmed:
		return 2
	default:
		return 0
	}
}

// Before reports whether s is an earlier lifecycle state than other.
func (s Status) Before(other Status) bool {
	return s.rank() < other.rank()
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusConfirmed:
		return true
	}
	return false
}

// SettlementKey identifies the single settlement a debtor can hold towards a creditor
// in a period.
type SettlementKey struct {
	Debtor   MemberID
	Creditor MemberID
	Period   Period
}

// Settlement represents a real-world payment between members to clear a suggested transfer.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// Debtor is the member who pays.
	Debtor MemberID

	// Creditor is the member who receives the payment.
	Creditor MemberID

	// Period is the month whose balances the payment settles.
	Period Period

	// Amount is the transfer amount when the record was created.
	Amount decimal.Decimal

	// Status is paid or confirmed; pending settlements have no record.
	Status Status

	// Proof is an opaque reference to a payment receipt. Not interpreted.
	Proof string

	CreatedAt   time.Time
	PaidAt      *time.Time
	ConfirmedAt *time.Time
}

// Key returns the (debtor, creditor, period) key of the settlement.
func (s Settlement) Key() SettlementKey {
	return SettlementKey{Debtor: s.Debtor, Creditor: s.Creditor, Period: s.Period}
}
