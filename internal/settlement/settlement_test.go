package settlement

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/housesplit/internal/models"
)

var (
	t0  = time.Date(2025, 3, 30, 10, 0, 0, 0, time.UTC)
	key = models.SettlementKey{Debtor: "luis", Creditor: "lucas", Period: "2025-03"}
)

func markPaid(amount, proof string) MarkPaid {
	return MarkPaid{Key: key, Amount: decimal.RequireFromString(amount), Proof: proof}
}

func TestApplyMarkPaid_CreatesPaidRecord(t *testing.T) {
	got, err := ApplyMarkPaid(nil, markPaid("42.10", "ticket.jpg"), t0)
	require.NoError(t, err)

	assert.Empty(t, got.ID)
	assert.Equal(t, key, got.Key())
	assert.Equal(t, models.StatusPaid, got.Status)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("42.10")))
	assert.Equal(t, "ticket.jpg", got.Proof)
	require.NotNil(t, got.PaidAt)
	assert.True(t, got.PaidAt.Equal(t0))
	assert.Nil(t, got.ConfirmedAt)
}

func TestApplyMarkPaid_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		req     MarkPaid
		wantErr error
	}{
		{"self settlement", MarkPaid{Key: models.SettlementKey{Debtor: "luis", Creditor: "luis", Period: "2025-03"}, Amount: decimal.NewFromInt(1)}, ErrSelfSettlement},
		{"missing creditor", MarkPaid{Key: models.SettlementKey{Debtor: "luis", Period: "2025-03"}, Amount: decimal.NewFromInt(1)}, ErrInvalidTransition},
		{"bad period", MarkPaid{Key: models.SettlementKey{Debtor: "luis", Creditor: "lucas", Period: "March"}, Amount: decimal.NewFromInt(1)}, models.ErrInvalidPeriod},
		{"zero amount", markPaid("0", ""), ErrNonPositiveAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyMarkPaid(nil, tt.req, t0)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestApplyMarkPaid_IsIdempotentAndMonotonic(t *testing.T) {
	first, err := ApplyMarkPaid(nil, markPaid("42.10", ""), t0)
	require.NoError(t, err)
	first.ID = "s1"

	later := t0.Add(2 * time.Hour)
	again, err := ApplyMarkPaid(&first, markPaid("99.99", "proof.png"), later)
	require.NoError(t, err)
	assert.Equal(t, "s1", again.ID)
	assert.Equal(t, models.StatusPaid, again.Status)
	assert.True(t, again.Amount.Equal(first.Amount), "amount is fixed at creation")
	assert.Equal(t, "proof.png", again.Proof)
	assert.True(t, again.PaidAt.Equal(later))

	confirmed, err := ApplyConfirm(&again, later)
	require.NoError(t, err)

	afterConfirm, err := ApplyMarkPaid(&confirmed, markPaid("42.10", ""), later.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, afterConfirm.Status, "status never moves backward")
	assert.Equal(t, "proof.png", afterConfirm.Proof, "empty proof keeps the previous one")
	assert.NotNil(t, afterConfirm.ConfirmedAt)
}

func TestApplyMarkPaid_RejectsRecordOfAnotherPair(t *testing.T) {
	other := models.Settlement{ID: "s9", Debtor: "monica", Creditor: "lucas", Period: "2025-03", Status: models.StatusPaid}
	_, err := ApplyMarkPaid(&other, markPaid("1", ""), t0)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApplyConfirm(t *testing.T) {
	t.Run("nothing to confirm", func(t *testing.T) {
		_, err := ApplyConfirm(nil, t0)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("paid moves to confirmed", func(t *testing.T) {
		paid, err := ApplyMarkPaid(nil, markPaid("10", ""), t0)
		require.NoError(t, err)

		got, err := ApplyConfirm(&paid, t0.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, models.StatusConfirmed, got.Status)
		require.NotNil(t, got.ConfirmedAt)
		assert.True(t, got.ConfirmedAt.Equal(t0.Add(time.Minute)))
		assert.Equal(t, models.StatusPaid, paid.Status, "input is not modified")
	})

	t.Run("confirmed cannot be confirmed again", func(t *testing.T) {
		confirmed := models.Settlement{ID: "s1", Debtor: "luis", Creditor: "lucas", Period: "2025-03", Status: models.StatusConfirmed}
		_, err := ApplyConfirm(&confirmed, t0)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestStatusOf(t *testing.T) {
	settlements := []models.Settlement{
		{ID: "a", Debtor: "luis", Creditor: "lucas", Period: "2025-02", Status: models.StatusConfirmed},
		{ID: "b", Debtor: "luis", Creditor: "lucas", Period: "2025-03", Status: models.StatusPaid},
	}

	assert.Equal(t, models.StatusPaid, StatusOf(settlements, key))
	assert.Equal(t, models.StatusPending, StatusOf(settlements, models.SettlementKey{Debtor: "lucas", Creditor: "luis", Period: "2025-03"}))

	found := Find(settlements, key)
	require.NotNil(t, found)
	assert.Equal(t, "b", found.ID)
	found.Status = models.StatusConfirmed
	assert.Equal(t, models.StatusPaid, settlements[1].Status, "Find returns a copy")
}
