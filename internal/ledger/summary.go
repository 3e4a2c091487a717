package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/ivanoskov/keloladuit/internal/model"
)

// NoPayment is shown as the favorite payment of an empty bucket
const NoPayment = "-"

// AllPayments disables the payment filter
const AllPayments = "all"

// Summary is the aggregate view of one month
type Summary struct {
	Month           string          `json:"month"`
	TotalIncome     decimal.Decimal `json:"total_income"`
	TotalExpense    decimal.Decimal `json:"total_expense"`
	Balance         decimal.Decimal `json:"balance"`
	Count           int             `json:"count"`
	FavoritePayment string          `json:"favorite_payment"`
}

// Summarize totals a list of transactions
func Summarize(txs []model.Transaction) Summary {
	s := Summary{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		Count:        len(txs),
	}
	for _, t := range txs {
		switch t.Type {
		case model.Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case model.Expense:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	s.FavoritePayment = FavoritePayment(txs)
	return s
}

// FavoritePayment returns the most used payment method. On a tie the method
// seen first wins; an empty list yields NoPayment.
func FavoritePayment(txs []model.Transaction) string {
	counts := make(map[string]int)
	var order []string
	for _, t := range txs {
		if _, seen := counts[t.Payment]; !seen {
			order = append(order, t.Payment)
		}
		counts[t.Payment]++
	}
	if len(order) == 0 {
		return NoPayment
	}
	best := order[0]
	for _, p := range order[1:] {
		if counts[p] > counts[best] {
			best = p
		}
	}
	return best
}

// ComputeMonthSummary totals the bucket of the given month
func (a *Aggregator) ComputeMonthSummary(month string) Summary {
	s := Summarize(a.Month(month))
	s.Month = month
	return s
}

// Filter returns the month's transactions paid with the given method.
// An empty method or AllPayments returns the whole bucket.
func (a *Aggregator) Filter(month, payment string) []model.Transaction {
	txs := a.Month(month)
	if payment == "" || payment == AllPayments {
		return txs
	}
	out := make([]model.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Payment == payment {
			out = append(out, t)
		}
	}
	return out
}
