package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTransaction() Transaction {
	return Transaction{
		Date:        "2024-03-15",
		Description: "Lunch",
		Type:        "expense",
		Payment:     "cash",
		Amount:      decimal.NewFromInt(50000),
	}
}

func TestTransactionRules(t *testing.T) {
	v := New()
	require.NoError(t, v.Struct(validTransaction()))

	free := validTransaction()
	free.Amount = decimal.Zero
	require.NoError(t, v.Struct(free), "a zero amount is allowed")

	tests := []struct {
		name   string
		mutate func(*Transaction)
		field  string
	}{
		{"missing description", func(tx *Transaction) { tx.Description = "" }, "description"},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, "type"},
		{"bad date", func(tx *Transaction) { tx.Date = "15/03/2024" }, "date"},
		{"negative amount", func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-5) }, "amount"},
		{"missing payment", func(tx *Transaction) { tx.Payment = "" }, "payment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			err := v.Struct(tx)
			var errs Errors
			require.ErrorAs(t, err, &errs)
			assert.Contains(t, errs, tt.field)
		})
	}

	tx := validTransaction()
	tx.Amount = decimal.NewFromInt(-5)
	var errs Errors
	require.ErrorAs(t, v.Struct(tx), &errs)
	assert.Equal(t, "must not be negative", errs["amount"])
}

func TestRegistrationRules(t *testing.T) {
	v := Default()
	ok := Registration{
		FullName:        "Budi Santoso",
		Email:           "budi@example.com",
		Password:        "rahasia123",
		ConfirmPassword: "rahasia123",
		AcceptTerms:     true,
	}
	require.NoError(t, v.Struct(ok))

	bad := Registration{
		FullName:        "Bo",
		Email:           "not-an-email",
		Password:        "short",
		ConfirmPassword: "different",
	}
	var errs Errors
	require.ErrorAs(t, v.Struct(bad), &errs)
	assert.Equal(t, "must be at least 3 characters", errs["fullname"])
	assert.Equal(t, "must be a valid email address", errs["email"])
	assert.Equal(t, "must be at least 8 characters", errs["password"])
	assert.Equal(t, "does not match", errs["confirmPassword"])
	assert.Equal(t, "must be accepted", errs["acceptTerms"])
}

func TestCredentialsAndMonth(t *testing.T) {
	v := Default()
	assert.NoError(t, v.Struct(Credentials{Email: "a@b.co", Password: "123456"}))
	assert.Error(t, v.Struct(Credentials{Email: "a@b.co", Password: "12345"}))
	assert.NoError(t, v.Struct(MonthQuery{Month: "2024-03"}))
	assert.Error(t, v.Struct(MonthQuery{Month: "2024-3"}))
}

func TestErrorsString(t *testing.T) {
	errs := Errors{"type": "must be income or expense", "amount": "must be greater than 0"}
	assert.Equal(t, "amount: must be greater than 0; type: must be income or expense", errs.Error())
}
