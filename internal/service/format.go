package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/ivanoskov/keloladuit/internal/ledger"
	"github.com/ivanoskov/keloladuit/internal/model"
)

var monthNames = []string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

var idPrinter = message.NewPrinter(language.Indonesian)

// MonthLabel turns a YYYY-MM key into "Maret 2024". Malformed keys are
// returned unchanged.
func MonthLabel(key string) string {
	t, err := model.ParseMonthKey(key)
	if err != nil {
		return key
	}
	return fmt.Sprintf("%s %d", monthNames[t.Month()-1], t.Year())
}

// DateLabel formats a date as "15 Maret 2024"
func DateLabel(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%d %s %d", t.Day(), monthNames[t.Month()-1], t.Year())
}

// FormatRupiah renders an amount with Indonesian digit grouping, e.g. "Rp 50.000"
func FormatRupiah(amount decimal.Decimal) string {
	return "Rp " + idPrinter.Sprint(number.Decimal(amount.InexactFloat64(), number.MaxFractionDigits(2)))
}

var healthLabels = map[ledger.Health]string{
	ledger.HealthNoData:       "Belum ada data",
	ledger.HealthOverspending: "Boros",
	ledger.HealthCritical:     "Kritis",
	ledger.HealthLow:          "Menipis",
	ledger.HealthStable:       "Stabil",
	ledger.HealthHealthy:      "Sehat",
}

// HealthLabel returns the Indonesian label of h
func HealthLabel(h ledger.Health) string {
	if l, ok := healthLabels[h]; ok {
		return l
	}
	return string(h)
}

const (
	msgNoData       = "Belum ada data bulan ini"
	msgOverspending = "⚠️ Pengeluaran lebih besar dari pemasukan."
	msgHealthy      = "👍 Keuanganmu sehat bulan ini."
)
