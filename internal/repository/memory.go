package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ivanoskov/keloladuit/internal/model"
)

// MemoryRepository is a process-local store for development and tests
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string][]model.Record
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string][]model.Record)}
}

// Seed stores records as they are, including loosely typed amounts. Records
// without an id get one.
func (r *MemoryRepository) Seed(userID string, records ...model.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		rec.UserID = userID
		r.records[userID] = append(r.records[userID], rec)
	}
}

func (r *MemoryRepository) ListTransactions(ctx context.Context, userID string) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Record, len(r.records[userID]))
	copy(out, r.records[userID])
	return out, nil
}

func (r *MemoryRepository) CreateTransaction(ctx context.Context, userID string, tx model.Transaction) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rec := model.NewRecord(userID, tx)
	rec.ID = uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[userID] = append(r.records[userID], rec)
	return rec.ID, nil
}

func (r *MemoryRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	recs := r.records[userID]
	for i, rec := range recs {
		if rec.ID == id {
			r.records[userID] = append(recs[:i:i], recs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
