package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2025-03")
	require.NoError(t, err)
	assert.Equal(t, Period("2025-03"), p)

	for _, bad := range []string{"", "2025-3", "2025-13", "03-2025", "2025-03-01"} {
		_, err := ParsePeriod(bad)
		assert.ErrorIs(t, err, ErrInvalidPeriod, bad)
		assert.False(t, Period(bad).Valid(), bad)
	}
}

func TestPeriodNavigation(t *testing.T) {
	assert.Equal(t, Period("2025-02"), Period("2025-03").Prev())
	assert.Equal(t, Period("2024-12"), Period("2025-01").Prev())
	assert.Equal(t, Period("2026-01"), Period("2025-12").Next())
	assert.Equal(t, Period("2025-03"), PeriodOf(time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC)))
}

func TestStatusOrder(t *testing.T) {
	assert.True(t, StatusPending.Before(StatusPaid))
	assert.True(t, StatusPaid.Before(StatusConfirmed))
	assert.False(t, StatusConfirmed.Before(StatusPaid))
	assert.False(t, Status("disputed").Valid())
}
