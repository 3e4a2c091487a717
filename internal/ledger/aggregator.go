// Package ledger keeps a user's transactions bucketed by month and derives
// the views the presentation layers show: monthly totals, history, the
// trailing expense series, the health label and profile statistics.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ivanoskov/keloladuit/internal/model"
)

// ErrInvalidDate is returned by strict ingestion and by RecordNew when a
// transaction date cannot be turned into a month key.
var ErrInvalidDate = errors.New("ledger: invalid transaction date")

// Ref identifies a recorded transaction before the store has issued its id
type Ref uint64

type entry struct {
	ref Ref
	tx  model.Transaction
}

// Aggregator owns the month -> transactions mapping of one user session.
// It is not safe for concurrent use.
type Aggregator struct {
	buckets    map[string][]entry
	order      []string // month keys in bucket creation order
	nextRef    Ref
	now        func() time.Time
	strict     bool
	thresholds HealthThresholds
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithClock sets the wall clock used to find the current month
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithStrictDates makes Ingest reject records whose month cannot be derived
// instead of filing them under the current month.
func WithStrictDates(strict bool) Option {
	return func(a *Aggregator) {
		a.strict = strict
	}
}

// WithThresholds overrides the health classification cut points
func WithThresholds(t HealthThresholds) Option {
	return func(a *Aggregator) {
		a.thresholds = t
	}
}

// New creates an empty aggregator. The current month bucket exists from the start.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		buckets:    make(map[string][]entry),
		now:        time.Now,
		thresholds: DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ensure(a.CurrentMonth())
	return a
}

// CurrentMonth returns the month key of the aggregator's clock
func (a *Aggregator) CurrentMonth() string {
	return model.MonthKey(a.now())
}

func (a *Aggregator) ensure(month string) {
	if _, ok := a.buckets[month]; !ok {
		a.buckets[month] = []entry{}
		a.order = append(a.order, month)
	}
}

func (a *Aggregator) add(month string, tx model.Transaction) Ref {
	a.ensure(month)
	a.nextRef++
	a.buckets[month] = append(a.buckets[month], entry{ref: a.nextRef, tx: tx})
	return a.nextRef
}

// monthFor decides which bucket a stored record belongs to
func (a *Aggregator) monthFor(tx model.Transaction, dateOK bool) (string, bool) {
	if model.ValidMonthKey(tx.Month) {
		return tx.Month, true
	}
	if dateOK {
		return model.MonthKey(tx.Date), true
	}
	return a.CurrentMonth(), false
}

// Ingest replaces the live view with the given stored records and returns
// the resulting buckets. A record's own month is trusted when well formed,
// otherwise it is derived from the date. Records without a usable date go to
// the current month unless strict dates are enabled, in which case the whole
// ingest fails and the live view is left as it was.
func (a *Aggregator) Ingest(records []model.Record) (map[string][]model.Transaction, error) {
	type pending struct {
		month string
		tx    model.Transaction
	}
	items := make([]pending, 0, len(records))
	for _, rec := range records {
		tx, dateOK := rec.Transaction()
		month, derived := a.monthFor(tx, dateOK)
		if !derived && a.strict {
			return nil, fmt.Errorf("%w: record %q has date %q", ErrInvalidDate, rec.ID, rec.Date)
		}
		tx.Month = month
		items = append(items, pending{month: month, tx: tx})
	}

	a.buckets = make(map[string][]entry)
	a.order = nil
	for _, it := range items {
		a.add(it.month, it.tx)
	}
	a.ensure(a.CurrentMonth())
	return a.Buckets(), nil
}

// RecordNew files a new transaction under the month of its date. The returned
// Ref can be used with AttachID once the store has issued an id.
func (a *Aggregator) RecordNew(tx model.Transaction) (model.Transaction, Ref, error) {
	if tx.Date.IsZero() {
		return model.Transaction{}, 0, ErrInvalidDate
	}
	tx.Month = model.MonthKey(tx.Date)
	ref := a.add(tx.Month, tx)
	return tx, ref, nil
}

// Insert files a transaction that already carries a store id
func (a *Aggregator) Insert(tx model.Transaction) (model.Transaction, error) {
	tx, ref, err := a.RecordNew(tx)
	if err != nil {
		return tx, err
	}
	a.AttachID(ref, tx.ID)
	return tx, nil
}

// AttachID sets the id of the transaction recorded under ref. It reports
// false when the transaction is gone, e.g. reset or deleted meanwhile.
func (a *Aggregator) AttachID(ref Ref, id string) bool {
	for _, month := range a.order {
		bucket := a.buckets[month]
		for i := range bucket {
			if bucket[i].ref == ref {
				bucket[i].tx.ID = id
				return true
			}
		}
	}
	return false
}

// Delete removes the first transaction with the given id, scanning buckets in
// creation order. Ids are assumed to be unique across months; a reused id
// only ever removes its first occurrence.
func (a *Aggregator) Delete(id string) (model.Transaction, bool) {
	if id == "" {
		return model.Transaction{}, false
	}
	for _, month := range a.order {
		bucket := a.buckets[month]
		for i, e := range bucket {
			if e.tx.ID == id {
				a.buckets[month] = append(bucket[:i:i], bucket[i+1:]...)
				return e.tx, true
			}
		}
	}
	return model.Transaction{}, false
}

// Month returns a copy of the bucket for the given key
func (a *Aggregator) Month(month string) []model.Transaction {
	bucket := a.buckets[month]
	out := make([]model.Transaction, len(bucket))
	for i, e := range bucket {
		out[i] = e.tx
	}
	return out
}

// Months returns every bucket key, sorted chronologically
func (a *Aggregator) Months() []string {
	keys := make([]string, 0, len(a.buckets))
	for k := range a.buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Buckets returns a copy of the whole month mapping
func (a *Aggregator) Buckets() map[string][]model.Transaction {
	out := make(map[string][]model.Transaction, len(a.buckets))
	for k := range a.buckets {
		out[k] = a.Month(k)
	}
	return out
}

// Len returns the number of transactions across all buckets
func (a *Aggregator) Len() int {
	n := 0
	for _, bucket := range a.buckets {
		n += len(bucket)
	}
	return n
}

// Thresholds returns the health cut points in use
func (a *Aggregator) Thresholds() HealthThresholds {
	return a.thresholds
}
