package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GregMSThompson/wifi-access-backend/internal/dto"
	"github.com/GregMSThompson/wifi-access-backend/internal/models"
)

// TransactionStore persists incoming payments keyed by reference.
type TransactionStore interface {
	Insert(ctx context.Context, tx *models.Transaction) dto.InsertResult
	ListForReview(ctx context.Context, limit int) ([]models.Transaction, error)
}

// SaleStore persists issued tickets.
type SaleStore interface {
	Reconcile(ctx context.Context, sale *models.Sale) error
	GetByCode(ctx context.Context, code string) (*models.Sale, error)
	ListSince(ctx context.Context, since time.Time) ([]*models.Sale, error)
}

// NewPostgres returns the Postgres-backed stores.
func NewPostgres(pool *pgxpool.Pool) (TransactionStore, SaleStore) {
	return NewPGTransactionStore(pool), NewPGSaleStore(pool)
}

// NewFirestore returns the Firestore-backed stores.
func NewFirestore(client *firestore.Client) (TransactionStore, SaleStore) {
	return NewTransactionStore(client), NewSaleStore(client)
}
