package model

import "time"

// UserState is the chat conversation state of a bot user
type UserState struct {
	UserID          int64           `json:"user_id"`
	TransactionType TransactionType `json:"transaction_type"`
	Payment         string          `json:"payment"`
	AwaitingAction  string          `json:"awaiting_action"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// PaymentMethods are the choices offered when recording a transaction.
// Stored payments are free text and are not checked against this list.
var PaymentMethods = []string{"cash", "card", "transfer", "e-wallet"}
