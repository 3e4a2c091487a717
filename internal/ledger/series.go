package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultTrailingPoints is the length of the expense chart
const DefaultTrailingPoints = 12

// SeriesPoint is the total expense of one month
type SeriesPoint struct {
	Month        string          `json:"month"`
	TotalExpense decimal.Decimal `json:"total_expense"`
}

// ComputeTrailingSeries returns the expense totals of the most recent
// maxPoints months that have at least one transaction, oldest first.
// A non-positive maxPoints means DefaultTrailingPoints.
func (a *Aggregator) ComputeTrailingSeries(maxPoints int) []SeriesPoint {
	if maxPoints <= 0 {
		maxPoints = DefaultTrailingPoints
	}
	months := make([]string, 0, len(a.buckets))
	for month, bucket := range a.buckets {
		if len(bucket) > 0 {
			months = append(months, month)
		}
	}
	sort.Strings(months)
	if len(months) > maxPoints {
		months = months[len(months)-maxPoints:]
	}

	points := make([]SeriesPoint, 0, len(months))
	for _, month := range months {
		points = append(points, SeriesPoint{
			Month:        month,
			TotalExpense: a.ComputeMonthSummary(month).TotalExpense,
		})
	}
	return points
}
