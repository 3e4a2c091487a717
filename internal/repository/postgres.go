package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ivanoskov/keloladuit/internal/model"
)

const schema = `
	CREATE TABLE IF NOT EXISTS transactions (
		id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id     TEXT NOT NULL,
		date        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		type        TEXT NOT NULL,
		payment     TEXT NOT NULL DEFAULT '',
		amount      NUMERIC,
		month       TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS transactions_user_id_idx ON transactions (user_id);
	ALTER TABLE transactions ALTER COLUMN amount TYPE NUMERIC;
`

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// Connect opens a pool and checks the connection
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the transactions table when missing
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListTransactions(ctx context.Context, userID string) ([]model.Record, error) {
	query := `
		SELECT id::text, user_id, date, description, type, payment, amount::text, month
		FROM transactions WHERE user_id = $1
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var (
			rec    model.Record
			amount *string
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Date, &rec.Description, &rec.Type, &rec.Payment, &amount, &rec.Month); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if amount != nil {
			rec.Amount = *amount
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *PostgresRepository) CreateTransaction(ctx context.Context, userID string, tx model.Transaction) (string, error) {
	query := `
		INSERT INTO transactions (user_id, date, description, type, payment, amount, month)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7)
		RETURNING id::text
	`
	var id string
	err := r.pool.QueryRow(ctx, query,
		userID, tx.Date.Format(model.DateLayout), tx.Description, string(tx.Type), tx.Payment,
		amountParam(tx.Amount), tx.Month,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id::text = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// amountParam renders an amount exactly as the live view holds it
func amountParam(d decimal.Decimal) string {
	return d.String()
}
