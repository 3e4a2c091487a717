package ledger

import "github.com/shopspring/decimal"

// Health is a discrete label for how much of a month's income is left
type Health string

const (
	HealthNoData       Health = "no-data"
	HealthOverspending Health = "overspending"
	HealthCritical     Health = "critical"
	HealthLow          Health = "low"
	HealthStable       Health = "stable"
	HealthHealthy      Health = "healthy"
)

// HealthThresholds are the percent-remaining cut points, each exclusive
type HealthThresholds struct {
	Critical float64
	Low      float64
	Stable   float64
}

// DefaultThresholds returns the 1% / 10% / 30% cut points
func DefaultThresholds() HealthThresholds {
	return HealthThresholds{Critical: 1, Low: 10, Stable: 30}
}

var hundred = decimal.NewFromInt(100)

// PercentRemaining returns balance / income * 100, or zero without income
func PercentRemaining(income, expense decimal.Decimal) decimal.Decimal {
	if income.IsZero() {
		return decimal.Zero
	}
	return income.Sub(expense).Div(income).Mul(hundred)
}

// ClassifyTotals labels a month from its totals
func ClassifyTotals(income, expense decimal.Decimal, t HealthThresholds) Health {
	if income.Sub(expense).IsNegative() {
		return HealthOverspending
	}
	pct := PercentRemaining(income, expense)
	switch {
	case pct.LessThan(decimal.NewFromFloat(t.Critical)):
		return HealthCritical
	case pct.LessThan(decimal.NewFromFloat(t.Low)):
		return HealthLow
	case pct.LessThan(decimal.NewFromFloat(t.Stable)):
		return HealthStable
	default:
		return HealthHealthy
	}
}

// ClassifyHealth labels the given month; an empty bucket has no data
func (a *Aggregator) ClassifyHealth(month string) Health {
	s := a.ComputeMonthSummary(month)
	if s.Count == 0 {
		return HealthNoData
	}
	return ClassifyTotals(s.TotalIncome, s.TotalExpense, a.thresholds)
}
