// Package cli renders housesplit reports for the terminal.
package cli

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/housesplit/internal/models"
)

// FormatMoney rounds d to cents for display, with an explicit sign for credits when
// signed is true.
func FormatMoney(d decimal.Decimal, signed bool) string {
	s := d.StringFixed(2)
	if signed && d.Round(2).IsPositive() {
		return "+" + s
	}
	return s
}

// FormatStatus returns the label shown for a settlement status.
func FormatStatus(s models.Status) string {
	switch s {
	case models.StatusPaid:
		return "paid, awaiting confirmation"
	case models.StatusConfirmed:
		return "confirmed"
	default:
		return "pending"
	}
}
