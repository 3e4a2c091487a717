package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ivanoskov/keloladuit/internal/model"
)

// FirestoreRepository keeps transactions under users/{uid}/transactions
type FirestoreRepository struct {
	client *firestore.Client
}

func NewFirestoreRepository(client *firestore.Client) *FirestoreRepository {
	return &FirestoreRepository{client: client}
}

func (r *FirestoreRepository) collection(userID string) *firestore.CollectionRef {
	return r.client.Collection("users").Doc(userID).Collection("transactions")
}

func (r *FirestoreRepository) ListTransactions(ctx context.Context, userID string) ([]model.Record, error) {
	docs, err := r.collection(userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	records := make([]model.Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, model.RecordFromMap(doc.Ref.ID, doc.Data()))
	}
	return records, nil
}

func (r *FirestoreRepository) CreateTransaction(ctx context.Context, userID string, tx model.Transaction) (string, error) {
	ref, _, err := r.collection(userID).Add(ctx, model.NewRecord(userID, tx).Map())
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}
	return ref.ID, nil
}

func (r *FirestoreRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	_, err := r.collection(userID).Doc(id).Delete(ctx)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}
	return nil
}
