package validation

import "github.com/shopspring/decimal"

// Transaction is the user input for a new ledger entry
type Transaction struct {
	Date        string          `json:"date" validate:"required,tx_date"`
	Description string          `json:"description" validate:"required,max=200"`
	Type        string          `json:"type" validate:"required,tx_type"`
	Payment     string          `json:"payment" validate:"required,max=40"`
	Amount      decimal.Decimal `json:"amount" validate:"gte=0"`
}

// Registration is the sign-up form
type Registration struct {
	FullName        string `json:"fullname" validate:"required,min=3,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	AcceptTerms     bool   `json:"acceptTerms" validate:"required"`
}

// Credentials is the sign-in form
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// MonthQuery selects one month bucket
type MonthQuery struct {
	Month string `json:"month" validate:"required,month_key"`
}
