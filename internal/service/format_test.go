package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ivanoskov/keloladuit/internal/ledger"
)

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Maret 2024", MonthLabel("2024-03"))
	assert.Equal(t, "Januari 2025", MonthLabel("2025-01"))
	assert.Equal(t, "garbage", MonthLabel("garbage"))
}

func TestDateLabel(t *testing.T) {
	assert.Equal(t, "17 Agustus 1945", DateLabel(time.Date(1945, 8, 17, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "-", DateLabel(time.Time{}))
}

func TestFormatRupiah(t *testing.T) {
	assert.Equal(t, "Rp 50.000", FormatRupiah(decimal.NewFromInt(50000)))
	assert.Equal(t, "Rp 1.234.567", FormatRupiah(decimal.NewFromInt(1234567)))
	assert.Equal(t, "Rp 0", FormatRupiah(decimal.Zero))
}

func TestHealthLabel(t *testing.T) {
	assert.Equal(t, "Kritis", HealthLabel(ledger.HealthCritical))
	assert.Equal(t, "mystery", HealthLabel(ledger.Health("mystery")))
}
