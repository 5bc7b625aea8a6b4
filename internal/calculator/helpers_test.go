package calculator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mmynk/housesplit/internal/models"
)

const (
	alice   models.MemberID = "alice"
	bob     models.MemberID = "bob"
	charlie models.MemberID = "charlie"
	diana   models.MemberID = "diana"
)

var household = []models.MemberID{alice, bob, charlie, diana}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

func assertWithin(t *testing.T, want, got, tolerance decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, want.Sub(got).Abs().LessThanOrEqual(tolerance),
		"want %s, got %s (tolerance %s) %v", want, got, tolerance, msgAndArgs)
}

func expense(period models.Period, amount string, payer models.MemberID, participants []models.MemberID, split models.SplitStrategy) models.Expense {
	return models.Expense{
		Amount:       d(amount),
		Payer:        payer,
		Participants: participants,
		Split:        split,
		Period:       period,
	}
}

var fixedNow = time.Date(2025, 3, 28, 18, 30, 0, 0, time.UTC)
