package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "0"},
		{"float", 50000.0, "50000"},
		{"int", 12, "12"},
		{"int64", int64(7), "7"},
		{"numeric string", "1500.25", "1500.25"},
		{"padded string", " 42 ", "42"},
		{"json number", json.Number("99.5"), "99.5"},
		{"garbage", "abc", "0"},
		{"bool", true, "0"},
		{"decimal", decimal.RequireFromString("3.14"), "3.14"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseAmount(tc.in).String())
		})
	}
}

func TestRecordTransactionDefaults(t *testing.T) {
	tx, ok := Record{ID: "a", Date: "2024-03-15", Type: "bonus", Amount: "x"}.Transaction()
	require.True(t, ok)
	assert.Equal(t, Expense, tx.Type)
	assert.Equal(t, UnknownPayment, tx.Payment)
	assert.True(t, tx.Amount.IsZero())
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.Empty(t, tx.Month)

	tx, ok = Record{ID: "b", Date: "15/03/2024", Type: "Income", Payment: "cash", Amount: 10.0}.Transaction()
	assert.False(t, ok)
	assert.Equal(t, Income, tx.Type)
	assert.True(t, tx.Date.IsZero())
	assert.Equal(t, "10", tx.Amount.String())
}

func TestRecordRoundTrip(t *testing.T) {
	tx := Transaction{
		Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Description: "lunch",
		Type:        Expense,
		Payment:     "cash",
		Amount:      decimal.NewFromInt(50000),
		Month:       "2024-03",
	}
	rec := NewRecord("user-1", tx)
	assert.Equal(t, "2024-03-15", rec.Date)
	assert.Equal(t, "user-1", rec.UserID)

	back := RecordFromMap("doc-1", rec.Map())
	got, ok := back.Transaction()
	require.True(t, ok)
	assert.Equal(t, "doc-1", got.ID)
	assert.True(t, got.Amount.Equal(tx.Amount))
	assert.Equal(t, tx.Month, got.Month)
	assert.Equal(t, tx.Payment, got.Payment)
}
