package calculator

import (
	"github.com/mmynk/housesplit/internal/models"
)

// ReconcileBalances returns gross adjusted by the confirmed settlements of period:
// each confirmed payment raises the debtor's balance and lowers the creditor's by its
// amount. Pending and paid settlements leave balances untouched. gross is not modified.
func ReconcileBalances(gross Balances, settlements []models.Settlement, period models.Period) Balances {
	net := gross.Clone()
	for _, s := range settlements {
		if s.Period != period || s.Status != models.StatusConfirmed {
			continue
		}
		net[s.Debtor] = net[s.Debtor].Add(s.Amount)
		net[s.Creditor] = net[s.Creditor].Sub(s.Amount)
	}
	return net
}
