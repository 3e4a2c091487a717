package ledger

import (
	"time"

	"github.com/ivanoskov/keloladuit/internal/model"
)

// ResetResult tells the caller whether the live view was reset and which
// marker to persist.
type ResetResult struct {
	Reset          bool
	LastResetMonth string
}

// ApplyMonthlyReset clears the live current-month bucket when today is the
// first of the month and no reset has been recorded for that month yet.
// The backing store is not touched. Calling it again with the returned
// marker is a no-op.
func (a *Aggregator) ApplyMonthlyReset(today time.Time, lastResetMonth string) ResetResult {
	current := model.MonthKey(today)
	if today.Day() != 1 || lastResetMonth == current {
		return ResetResult{LastResetMonth: lastResetMonth}
	}
	a.ensure(current)
	a.buckets[current] = []entry{}
	return ResetResult{Reset: true, LastResetMonth: current}
}
