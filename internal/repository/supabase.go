package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/supabase-community/supabase-go"

	"github.com/ivanoskov/keloladuit/internal/logger"
	"github.com/ivanoskov/keloladuit/internal/model"
)

const transactionsTable = "transactions"

type SupabaseRepository struct {
	client *supabase.Client
	log    *logger.Logger
}

func NewSupabaseRepository(url, key string, log *logger.Logger) (*SupabaseRepository, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &SupabaseRepository{
		client: client,
		log:    log.WithComponent("repository"),
	}, nil
}

func (r *SupabaseRepository) ListTransactions(ctx context.Context, userID string) ([]model.Record, error) {
	data, count, err := r.client.From(transactionsTable).
		Select("*", "exact", false).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	r.log.DebugContext(ctx, "fetched transactions", "user_id", userID, "count", count)

	var records []model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse transactions: %w", err)
	}
	return records, nil
}

// supabaseInsert omits the id so the table default issues one
type supabaseInsert struct {
	UserID      string  `json:"user_id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Payment     string  `json:"payment"`
	Amount      float64 `json:"amount"`
	Month       string  `json:"month"`
}

func (r *SupabaseRepository) CreateTransaction(ctx context.Context, userID string, tx model.Transaction) (string, error) {
	row := supabaseInsert{
		UserID:      userID,
		Date:        tx.Date.Format(model.DateLayout),
		Description: tx.Description,
		Type:        string(tx.Type),
		Payment:     tx.Payment,
		Amount:      tx.Amount.InexactFloat64(),
		Month:       tx.Month,
	}
	data, _, err := r.client.From(transactionsTable).
		Insert(row, false, "", "representation", "").
		Execute()
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}

	var created []model.Record
	if err := json.Unmarshal(data, &created); err != nil {
		return "", fmt.Errorf("failed to parse created transaction: %w", err)
	}
	if len(created) == 0 || created[0].ID == "" {
		return "", fmt.Errorf("failed to create transaction: empty representation")
	}
	r.log.DebugContext(ctx, "created transaction", "user_id", userID, "id", created[0].ID)
	return created[0].ID, nil
}

func (r *SupabaseRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	_, _, err := r.client.From(transactionsTable).
		Delete("", "").
		Eq("id", id).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}
	return nil
}
