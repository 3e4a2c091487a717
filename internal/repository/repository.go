package repository

import (
	"context"
	"errors"

	"github.com/ivanoskov/keloladuit/internal/model"
)

//go:generate mockgen -source=repository.go -destination=repository_mock.go -package=repository

// ErrNotFound is returned when a transaction id is unknown to the store
var ErrNotFound = errors.New("transaction not found")

// Repository persists transactions per user. Ids are issued by the store.
type Repository interface {
	ListTransactions(ctx context.Context, userID string) ([]model.Record, error)
	CreateTransaction(ctx context.Context, userID string, tx model.Transaction) (string, error)
	DeleteTransaction(ctx context.Context, userID, id string) error
}
