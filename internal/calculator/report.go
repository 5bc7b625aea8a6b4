package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/housesplit/internal/models"
	"github.com/mmynk/housesplit/internal/settlement"
)

// Snapshot is an immutable view of the record store. Callers take a fresh snapshot
// after every change and rebuild the report from it.
type Snapshot struct {
	// Members is the canonical member order.
	Members     []models.MemberID
	Expenses    []models.Expense
	Settlements []models.Settlement
}

// TransferStatus is a suggested transfer annotated with its settlement progress.
type TransferStatus struct {
	Transfer
	Status models.Status

	// Settlement is the record behind Status; nil while pending.
	Settlement *models.Settlement
}

// Report is everything derived for one period.
type Report struct {
	Period models.Period

	// Balances are gross balances before any settlement, in canonical order.
	Balances []MemberBalance

	// Transfers is the greedy transfer plan for Balances.
	Transfers []TransferStatus

	// Net are balances after confirmed settlements, in canonical order.
	Net []MemberBalance

	// TotalPaid is the amount each member paid for the period's expenses.
	TotalPaid map[models.MemberID]decimal.Decimal

	// ExpenseCount is the number of expenses that contributed to Balances.
	ExpenseCount int

	// AllSettled is true when there is at least one transfer and all are confirmed.
	AllSettled bool
}

// BuildReport derives the report for period from s.
func BuildReport(s Snapshot, period models.Period) Report {
	var expenses []models.Expense
	totalPaid := make(map[models.MemberID]decimal.Decimal)
	for _, e := range s.Expenses {
		if e.Period != period || ResolveSplit(e) == nil {
			continue
		}
		expenses = append(expenses, e)
		totalPaid[e.Payer] = totalPaid[e.Payer].Add(e.Amount)
	}

	gross := AggregateBalances(expenses, period)
	ordered := gross.Ordered(s.Members)

	var periodSettlements []models.Settlement
	for _, st := range s.Settlements {
		if st.Period == period {
			periodSettlements = append(periodSettlements, st)
		}
	}

	transfers := SimplifyDebts(ordered)
	annotated := make([]TransferStatus, len(transfers))
	allSettled := len(transfers) > 0
	for i, t := range transfers {
		key := models.SettlementKey{Debtor: t.From, Creditor: t.To, Period: period}
		rec := settlement.Find(periodSettlements, key)
		status := models.StatusPending
		if rec != nil {
			status = rec.Status
		}
		if status != models.StatusConfirmed {
			allSettled = false
		}
		annotated[i] = TransferStatus{Transfer: t, Status: status, Settlement: rec}
	}

	net := ReconcileBalances(gross, periodSettlements, period)

	return Report{
		Period:       period,
		Balances:     ordered,
		Transfers:    annotated,
		Net:          net.Ordered(s.Members),
		TotalPaid:    totalPaid,
		ExpenseCount: len(expenses),
		AllSettled:   allSettled,
	}
}

// Outstanding returns the transfers member still has to pay, i.e. not yet confirmed.
func (r Report) Outstanding(member models.MemberID) []TransferStatus {
	var out []TransferStatus
	for _, t := range r.Transfers {
		if t.From == member && t.Status != models.StatusConfirmed {
			out = append(out, t)
		}
	}
	return out
}

// AwaitingConfirmation returns the transfers paid to member that member has not yet
// confirmed.
func (r Report) AwaitingConfirmation(member models.MemberID) []TransferStatus {
	var out []TransferStatus
	for _, t := range r.Transfers {
		if t.To == member && t.Status == models.StatusPaid {
			out = append(out, t)
		}
	}
	return out
}
