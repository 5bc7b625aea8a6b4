// Package settlement tracks the real-world payment of suggested transfers.
//
// Each (debtor, creditor, period) pair moves through pending -> paid -> confirmed.
// Pending is the absence of a record; the first MarkPaid creates one. Confirmed is
// terminal, and no transition ever moves a settlement back to an earlier state.
package settlement

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/housesplit/internal/models"
)

var (
	ErrNotFound          = errors.New("settlement not found")
	ErrInvalidTransition = errors.New("invalid settlement transition")
	ErrSelfSettlement    = errors.New("debtor and creditor must differ")
	ErrNonPositiveAmount = errors.New("settlement amount must be positive")
)

// MarkPaid is a debtor's report that a transfer has been made.
type MarkPaid struct {
	Key    models.SettlementKey
	Amount decimal.Decimal
	Proof  string
}

// ApplyMarkPaid returns the settlement that results from req applied to existing, which
// is nil when the pair has no record yet.
//
// A new record is created in paid status with req.Amount. An existing record keeps its
// original amount and status (paid stays paid, confirmed stays confirmed); only the paid
// timestamp and, when given, the proof are refreshed. The returned value has no ID when
// it is new; the store assigns one.
func ApplyMarkPaid(existing *models.Settlement, req MarkPaid, at time.Time) (models.Settlement, error) {
	if req.Key.Debtor == "" || req.Key.Creditor == "" {
		return models.Settlement{}, fmt.Errorf("%w: debtor and creditor are required", ErrInvalidTransition)
	}
	if req.Key.Debtor == req.Key.Creditor {
		return models.Settlement{}, ErrSelfSettlement
	}
	if !req.Key.Period.Valid() {
		return models.Settlement{}, fmt.Errorf("%w: %q", models.ErrInvalidPeriod, req.Key.Period)
	}

	paidAt := at.UTC()

	if existing == nil {
		if !req.Amount.IsPositive() {
			return models.Settlement{}, ErrNonPositiveAmount
		}
		return models.Settlement{
			Debtor:    req.Key.Debtor,
			Creditor:  req.Key.Creditor,
			Period:    req.Key.Period,
			Amount:    req.Amount,
			Status:    models.StatusPaid,
			Proof:     req.Proof,
			CreatedAt: paidAt,
			PaidAt:    &paidAt,
		}, nil
	}

	if existing.Key() != req.Key {
		return models.Settlement{}, fmt.Errorf("%w: record %s belongs to a different pair", ErrInvalidTransition, existing.ID)
	}

	next := *existing
	next.PaidAt = &paidAt
	if req.Proof != "" {
		next.Proof = req.Proof
	}
	if next.Status.Before(models.StatusPaid) {
		next.Status = models.StatusPaid
	}
	return next, nil
}

// ApplyConfirm returns existing moved from paid to confirmed. It fails with ErrNotFound
// when there is no record and with ErrInvalidTransition for any status other than paid.
func ApplyConfirm(existing *models.Settlement, at time.Time) (models.Settlement, error) {
	if existing == nil {
		return models.Settlement{}, ErrNotFound
	}
	if existing.Status != models.StatusPaid {
		return models.Settlement{}, fmt.Errorf("%w: cannot confirm a %s settlement", ErrInvalidTransition, existing.Status)
	}

	confirmedAt := at.UTC()
	next := *existing
	next.Status = models.StatusConfirmed
	next.ConfirmedAt = &confirmedAt
	return next, nil
}

// Find returns the settlement for key in settlements, or nil.
func Find(settlements []models.Settlement, key models.SettlementKey) *models.Settlement {
	for i := range settlements {
		if settlements[i].Key() == key {
			s := settlements[i]
			return &s
		}
	}
	return nil
}

// StatusOf returns the status of key, which is pending when no record exists.
func StatusOf(settlements []models.Settlement, key models.SettlementKey) models.Status {
	if s := Find(settlements, key); s != nil {
		return s.Status
	}
	return models.StatusPending
}
