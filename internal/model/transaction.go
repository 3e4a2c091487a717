package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is either income or expense
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// UnknownPayment is used for stored records without a payment method
const UnknownPayment = "unknown"

// Valid reports whether t is one of the known transaction types
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Transaction is a single income or expense entry. ID stays empty until the
// store has issued one.
type Transaction struct {
	ID          string          `json:"id,omitempty"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Type        TransactionType `json:"type"`
	Payment     string          `json:"payment"`
	Amount      decimal.Decimal `json:"amount"`
	Month       string          `json:"month"`
}

// IsIncome reports whether the transaction adds to the balance
func (t Transaction) IsIncome() bool {
	return t.Type == Income
}

// Record is the shape transactions have in the remote store. Amount is kept
// loose on purpose: older documents carry numbers, numeric strings or nothing.
type Record struct {
	ID          string `json:"id,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Payment     string `json:"payment"`
	Amount      any    `json:"amount"`
	Month       string `json:"month,omitempty"`
}

// NewRecord converts a transaction into its stored shape
func NewRecord(userID string, t Transaction) Record {
	return Record{
		ID:          t.ID,
		UserID:      userID,
		Date:        t.Date.Format(DateLayout),
		Description: t.Description,
		Type:        string(t.Type),
		Payment:     t.Payment,
		Amount:      t.Amount.InexactFloat64(),
		Month:       t.Month,
	}
}

// Map returns the record as a document body without the id, which lives in
// the document path.
func (r Record) Map() map[string]any {
	return map[string]any{
		"date":        r.Date,
		"description": r.Description,
		"type":        r.Type,
		"payment":     r.Payment,
		"amount":      r.Amount,
		"month":       r.Month,
	}
}

// RecordFromMap reads a document body, ignoring fields of unexpected types
func RecordFromMap(id string, data map[string]any) Record {
	str := func(key string) string {
		s, _ := data[key].(string)
		return s
	}
	return Record{
		ID:          id,
		UserID:      str("user_id"),
		Date:        str("date"),
		Description: str("description"),
		Type:        str("type"),
		Payment:     str("payment"),
		Amount:      data["amount"],
		Month:       str("month"),
	}
}

// Transaction converts the record, defaulting whatever is missing. The month
// is taken as stored; deriving it is the aggregator's job. ok is false when
// the date cannot be parsed, in which case Date is the zero time.
func (r Record) Transaction() (t Transaction, ok bool) {
	t = Transaction{
		ID:          r.ID,
		Description: r.Description,
		Type:        TransactionType(strings.ToLower(strings.TrimSpace(r.Type))),
		Payment:     strings.TrimSpace(r.Payment),
		Amount:      ParseAmount(r.Amount),
		Month:       strings.TrimSpace(r.Month),
	}
	if t.Type != Income {
		t.Type = Expense
	}
	if t.Payment == "" {
		t.Payment = UnknownPayment
	}
	date, err := ParseDate(r.Date)
	if err != nil {
		return t, false
	}
	t.Date = date
	return t, true
}

// ParseAmount converts a loosely typed amount into a decimal. Missing or
// non-numeric values yield zero.
func ParseAmount(v any) decimal.Decimal {
	switch a := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return a
	case float64:
		return decimal.NewFromFloat(a)
	case float32:
		return decimal.NewFromFloat32(a)
	case int:
		return decimal.NewFromInt(int64(a))
	case int64:
		return decimal.NewFromInt(a)
	case int32:
		return decimal.NewFromInt32(a)
	case json.Number:
		d, err := decimal.NewFromString(a.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(a))
		if err != nil {
			if f, ferr := strconv.ParseFloat(strings.TrimSpace(a), 64); ferr == nil {
				return decimal.NewFromFloat(f)
			}
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}
