package service

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/housesplit/internal/calculator"
	"github.com/mmynk/housesplit/internal/models"
	"github.com/mmynk/housesplit/pkg/api"
)

// displayPlaces is the number of decimal places balances are rounded to on the wire.
const displayPlaces = 2

// expenseFromInput builds an unvalidated expense paid by payer.
func expenseFromInput(payer models.MemberID, in api.ExpenseInput) (models.Expense, error) {
	var shares map[models.MemberID]decimal.Decimal
	if len(in.Shares) > 0 {
		shares = make(map[models.MemberID]decimal.Decimal, len(in.Shares))
		for id, v := range in.Shares {
			shares[models.MemberID(id)] = v
		}
	}

	split, err := models.NewSplitStrategy(models.SplitKind(in.SplitStrategy), shares)
	if err != nil {
		return models.Expense{}, err
	}

	participants := make([]models.MemberID, len(in.ParticipantIDs))
	for i, id := range in.ParticipantIDs {
		participants[i] = models.MemberID(id)
	}

	return models.Expense{
		Amount:       in.Amount,
		Payer:        payer,
		Participants: participants,
		Split:        split,
		Period:       models.Period(in.Period),
		Category:     in.Category,
		Description:  in.Description,
		Note:         in.Note,
	}, nil
}

func toAPIExpense(e models.Expense) api.Expense {
	out := api.Expense{
		ID:             e.ID,
		Amount:         e.Amount,
		PayerID:        string(e.Payer),
		ParticipantIDs: make([]string, len(e.Participants)),
		Period:         string(e.Period),
		Category:       e.Category,
		Description:    e.Description,
		Note:           e.Note,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
	for i, p := range e.Participants {
		out.ParticipantIDs[i] = string(p)
	}
	if e.Split != nil {
		out.SplitStrategy = string(e.Split.Kind())
	}
	if shares := models.SplitShares(e.Split); len(shares) > 0 {
		out.Shares = make(map[string]decimal.Decimal, len(shares))
		for id, v := range shares {
			out.Shares[string(id)] = v
		}
	}
	return out
}

func toAPISettlement(s models.Settlement) api.Settlement {
	return api.Settlement{
		ID:          s.ID,
		DebtorID:    string(s.Debtor),
		CreditorID:  string(s.Creditor),
		Period:      string(s.Period),
		Amount:      s.Amount,
		Status:      string(s.Status),
		Proof:       s.Proof,
		CreatedAt:   s.CreatedAt,
		PaidAt:      s.PaidAt,
		ConfirmedAt: s.ConfirmedAt,
	}
}

func toAPIBalances(balances []calculator.MemberBalance) []api.Balance {
	out := make([]api.Balance, len(balances))
	for i, b := range balances {
		out[i] = api.Balance{MemberID: string(b.Member), Amount: b.Amount.Round(displayPlaces)}
	}
	return out
}

// toAPIReport converts r as seen by viewer.
func toAPIReport(r calculator.Report, members []models.MemberID, viewer models.MemberID) api.Report {
	transfers := make([]api.Transfer, len(r.Transfers))
	for i, t := range r.Transfers {
		transfers[i] = api.Transfer{
			FromID: string(t.From),
			ToID:   string(t.To),
			Amount: t.Amount,
			Status: string(t.Status),
		}
		if t.Settlement != nil {
			transfers[i].SettlementID = t.Settlement.ID
		}
	}

	totalPaid := make([]api.Balance, len(members))
	for i, id := range members {
		totalPaid[i] = api.Balance{MemberID: string(id), Amount: r.TotalPaid[id].Round(displayPlaces)}
	}

	return api.Report{
		Period:               string(r.Period),
		Balances:             toAPIBalances(r.Balances),
		Transfers:            transfers,
		Net:                  toAPIBalances(r.Net),
		TotalPaid:            totalPaid,
		ExpenseCount:         r.ExpenseCount,
		AllSettled:           r.AllSettled,
		AwaitingConfirmation: len(r.AwaitingConfirmation(viewer)),
	}
}
