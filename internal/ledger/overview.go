package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/ivanoskov/keloladuit/internal/model"
)

// Overview holds the profile statistics across every bucket
type Overview struct {
	TotalTransactions    int             `json:"total_transactions"`
	TotalMonths          int             `json:"total_months"`
	FavoritePayment      string          `json:"favorite_payment"`
	TotalIncome          decimal.Decimal `json:"total_income"`
	AverageMonthlyIncome decimal.Decimal `json:"average_monthly_income"`
}

// Overview computes profile statistics. Months are counted by bucket key, so
// an empty current month still counts.
func (a *Aggregator) Overview() Overview {
	var all []model.Transaction
	for _, month := range a.order {
		all = append(all, a.Month(month)...)
	}
	s := Summarize(all)
	o := Overview{
		TotalTransactions:    s.Count,
		TotalMonths:          len(a.buckets),
		FavoritePayment:      s.FavoritePayment,
		TotalIncome:          s.TotalIncome,
		AverageMonthlyIncome: decimal.Zero,
	}
	if o.TotalMonths > 0 {
		o.AverageMonthlyIncome = s.TotalIncome.Div(decimal.NewFromInt(int64(o.TotalMonths))).Round(0)
	}
	return o
}

// History returns the summaries of every month except the current one,
// oldest first.
func (a *Aggregator) History() []Summary {
	current := a.CurrentMonth()
	var out []Summary
	for _, month := range a.Months() {
		if month == current {
			continue
		}
		out = append(out, a.ComputeMonthSummary(month))
	}
	return out
}
