package ledger

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/keloladuit/internal/model"
)

func TestTrailingSeriesBounded(t *testing.T) {
	a := New(WithClock(fixedClock(2025, 6, 15)))
	var records []model.Record
	for i := 0; i < 18; i++ {
		year, month := 2024+i/12, i%12+1
		records = append(records, rec(fmt.Sprint(i), fmt.Sprintf("%d-%02d-10", year, month), "expense", "cash", float64(i+1)))
	}
	_, err := a.Ingest(records)
	require.NoError(t, err)

	points := a.ComputeTrailingSeries(12)
	require.Len(t, points, 12)
	assert.Equal(t, "2024-07", points[0].Month)
	assert.Equal(t, "2025-06", points[11].Month)
	assert.True(t, points[11].TotalExpense.Equal(decimal.NewFromInt(18)))
	for i := 1; i < len(points); i++ {
		assert.Less(t, points[i-1].Month, points[i].Month)
	}
}

func TestTrailingSeriesSkipsEmptyMonths(t *testing.T) {
	a := New(WithClock(fixedClock(2024, 5, 10)))
	_, err := a.Ingest([]model.Record{
		rec("1", "2024-03-15", "income", "cash", 1000.0),
		rec("2", "2024-04-15", "expense", "cash", 40.0),
	})
	require.NoError(t, err)
	_, ok := a.Delete("2")
	require.True(t, ok)

	points := a.ComputeTrailingSeries(0)
	require.Len(t, points, 1, "current month and emptied April are left out")
	assert.Equal(t, "2024-03", points[0].Month)
	assert.True(t, points[0].TotalExpense.IsZero())
}

func TestTrailingSeriesIsRecomputed(t *testing.T) {
	a := New(WithClock(fixedClock(2024, 5, 10)))
	assert.Empty(t, a.ComputeTrailingSeries(12))

	_, _, err := a.RecordNew(newTx("2024-05-02", model.Expense, "cash", 5))
	require.NoError(t, err)
	first := a.ComputeTrailingSeries(12)
	_, _, err = a.RecordNew(newTx("2024-05-03", model.Expense, "cash", 5))
	require.NoError(t, err)
	second := a.ComputeTrailingSeries(12)

	assert.True(t, first[0].TotalExpense.Equal(decimal.NewFromInt(5)))
	assert.True(t, second[0].TotalExpense.Equal(decimal.NewFromInt(10)))
}
