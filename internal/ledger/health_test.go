package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/keloladuit/internal/model"
)

func TestClassifyTotals(t *testing.T) {
	cases := []struct {
		expense int64
		want    Health
	}{
		{1200, HealthOverspending},
		{1000, HealthCritical},
		{991, HealthCritical},
		{905, HealthLow},
		{750, HealthStable},
		{700, HealthHealthy},
		{500, HealthHealthy},
	}
	income := decimal.NewFromInt(1000)
	for _, tc := range cases {
		got := ClassifyTotals(income, decimal.NewFromInt(tc.expense), DefaultThresholds())
		assert.Equal(t, tc.want, got, "expense %d", tc.expense)
	}
}

func TestClassifyTotalsWithoutIncome(t *testing.T) {
	assert.Equal(t, HealthCritical, ClassifyTotals(decimal.Zero, decimal.Zero, DefaultThresholds()))
	assert.Equal(t, HealthOverspending, ClassifyTotals(decimal.Zero, decimal.NewFromInt(1), DefaultThresholds()))
	assert.True(t, PercentRemaining(decimal.Zero, decimal.NewFromInt(5)).IsZero())
}

func TestClassifyHealth(t *testing.T) {
	a := New(WithClock(fixedClock(2024, 3, 10)))
	assert.Equal(t, HealthNoData, a.ClassifyHealth("2024-03"))

	_, _, err := a.RecordNew(newTx("2024-03-01", model.Income, "transfer", 1000))
	require.NoError(t, err)
	_, _, err = a.RecordNew(newTx("2024-03-02", model.Expense, "cash", 905))
	require.NoError(t, err)
	assert.Equal(t, HealthLow, a.ClassifyHealth("2024-03"))
}

func TestCustomThresholds(t *testing.T) {
	a := New(WithThresholds(HealthThresholds{Critical: 5, Low: 20, Stable: 60}))
	assert.Equal(t, HealthThresholds{Critical: 5, Low: 20, Stable: 60}, a.Thresholds())
	income := decimal.NewFromInt(1000)
	assert.Equal(t, HealthStable, ClassifyTotals(income, decimal.NewFromInt(500), a.Thresholds()))
	assert.Equal(t, HealthCritical, ClassifyTotals(income, decimal.NewFromInt(960), a.Thresholds()))
}
