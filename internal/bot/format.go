package bot

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ivanoskov/keloladuit/internal/model"
	"github.com/ivanoskov/keloladuit/internal/service"
	"github.com/ivanoskov/keloladuit/internal/validation"
)

var (
	errBadEntry = errors.New("entry must be <amount> <description> [YYYY-MM-DD]")
	groupedRe   = regexp.MustCompile(`^\d{1,3}(\.\d{3})+(,\d+)?$`)
)

// parseAmount accepts plain numbers and Indonesian grouping ("50.000", "1.500,5")
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "Rp"), "rp")
	if groupedRe.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
	}
	s = strings.ReplaceAll(s, ",", ".")
	return decimal.NewFromString(s)
}

// parseEntry reads "<amount> <description> [YYYY-MM-DD]". Without a date the
// entry is dated today.
func parseEntry(text string, today time.Time) (validation.Transaction, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return validation.Transaction{}, errBadEntry
	}
	amount, err := parseAmount(fields[0])
	if err != nil {
		return validation.Transaction{}, errBadEntry
	}

	date := today.Format(model.DateLayout)
	rest := fields[1:]
	if len(rest) > 1 {
		if _, err := time.Parse(model.DateLayout, rest[len(rest)-1]); err == nil {
			date = rest[len(rest)-1]
			rest = rest[:len(rest)-1]
		}
	}
	return validation.Transaction{
		Date:        date,
		Description: strings.Join(rest, " "),
		Amount:      amount,
	}, nil
}

func typeEmoji(t model.TransactionType) string {
	if t == model.Income {
		return "💰"
	}
	return "💸"
}

func formatTransaction(tx model.Transaction) string {
	id := tx.ID
	if id == "" {
		id = "-"
	}
	return fmt.Sprintf("%s %s | %s | %s | %s\n   id: %s",
		typeEmoji(tx.Type), tx.Date.Format(model.DateLayout), tx.Description, tx.Payment,
		service.FormatRupiah(tx.Amount), id)
}

func formatDashboard(d service.Dashboard) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Laporan %s", d.Label)
	if d.Payment != "" && d.Payment != "all" {
		fmt.Fprintf(&b, " (%s)", d.Payment)
	}
	fmt.Fprintf(&b, "\n\n💰 Pemasukan: %s\n💸 Pengeluaran: %s\n💵 Saldo: %s\n💳 Metode favorit: %s\n",
		service.FormatRupiah(d.Summary.TotalIncome),
		service.FormatRupiah(d.Summary.TotalExpense),
		service.FormatRupiah(d.Summary.Balance),
		d.Summary.FavoritePayment)
	fmt.Fprintf(&b, "🩺 Kondisi: %s\n\n%s\n", d.Insight.HealthLabel, d.Insight.Message)

	if len(d.Transactions) > 0 {
		b.WriteString("\nTransaksi:\n")
		for _, tx := range d.Transactions {
			b.WriteString(formatTransaction(tx))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatHistory(cards []service.MonthCard) string {
	if len(cards) == 0 {
		return "Belum ada riwayat bulan sebelumnya."
	}
	var b strings.Builder
	b.WriteString("📅 Riwayat\n")
	for _, c := range cards {
		fmt.Fprintf(&b, "\n%s\n   💰 %s  💸 %s  💵 %s\n   %d transaksi, %s\n",
			c.Label,
			service.FormatRupiah(c.TotalIncome),
			service.FormatRupiah(c.TotalExpense),
			service.FormatRupiah(c.Balance),
			c.Count,
			service.HealthLabel(c.Health))
	}
	return b.String()
}

func formatMonthDetail(d service.MonthDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 %s\n\n💰 Pemasukan: %s\n💸 Pengeluaran: %s\n💵 Saldo: %s\n🩺 Kondisi: %s\n",
		d.Label,
		service.FormatRupiah(d.TotalIncome),
		service.FormatRupiah(d.TotalExpense),
		service.FormatRupiah(d.Balance),
		service.HealthLabel(d.Health))
	if len(d.Transactions) == 0 {
		b.WriteString("\nTidak ada transaksi.")
		return b.String()
	}
	b.WriteString("\n")
	for _, tx := range d.Transactions {
		b.WriteString(formatTransaction(tx))
		b.WriteString("\n")
	}
	return b.String()
}

func formatProfile(p service.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👤 %s\n", p.Name)
	if p.Email != "" {
		fmt.Fprintf(&b, "✉️ %s\n", p.Email)
	}
	fmt.Fprintf(&b, "📆 Bergabung: %s\n\n", p.JoinedLabel)
	fmt.Fprintf(&b, "🧾 Total transaksi: %d\n📅 Jumlah bulan: %d\n💳 Metode favorit: %s\n📈 Rata-rata pemasukan: %s",
		p.Stats.TotalTransactions,
		p.Stats.TotalMonths,
		p.Stats.FavoritePayment,
		service.FormatRupiah(p.Stats.AverageMonthlyIncome))
	return b.String()
}
