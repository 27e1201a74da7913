package store

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"

	"github.com/GregMSThompson/wifi-access-backend/internal/dto"
	"github.com/GregMSThompson/wifi-access-backend/internal/errs"
	"github.com/GregMSThompson/wifi-access-backend/internal/models"
)

const transactionsCollection = "transactions"

// transactionDoc is the Firestore shape of a transaction. Amounts are stored
// as fixed two-decimal strings so no float rounding happens on the way in.
type transactionDoc struct {
	Reference    string     `firestore:"reference"`
	Amount       string     `firestore:"amount"`
	BankOrigin   string     `firestore:"bankOrigin"`
	Status       string     `firestore:"status"`
	NeedsReview  bool       `firestore:"needsReview"`
	ReviewReason string     `firestore:"reviewReason,omitempty"`
	RawPayload   string     `firestore:"rawPayload,omitempty"`
	CreatedAt    time.Time  `firestore:"createdAt,serverTimestamp"`
	UsedAt       *time.Time `firestore:"usedAt"`
}

func newTransactionDoc(tx *models.Transaction) transactionDoc {
	return transactionDoc{
		Reference:    tx.Reference,
		Amount:       tx.Amount.StringFixed(2),
		BankOrigin:   tx.BankOrigin,
		Status:       string(tx.Status),
		NeedsReview:  tx.NeedsReview,
		ReviewReason: tx.ReviewReason,
		RawPayload:   string(tx.RawPayload),
	}
}

func (d transactionDoc) model() (models.Transaction, error) {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return models.Transaction{}, err
	}
	t := models.Transaction{
		Reference:    d.Reference,
		Amount:       amount,
		BankOrigin:   d.BankOrigin,
		Status:       models.TransactionStatus(d.Status),
		NeedsReview:  d.NeedsReview,
		ReviewReason: d.ReviewReason,
		CreatedAt:    d.CreatedAt,
		UsedAt:       d.UsedAt,
	}
	if d.RawPayload != "" {
		t.RawPayload = json.RawMessage(d.RawPayload)
	}
	return t, nil
}

type transactionStore struct {
	client *firestore.Client
}

func NewTransactionStore(client *firestore.Client) *transactionStore {
	return &transactionStore{client: client}
}

func (s *transactionStore) collection() *firestore.CollectionRef {
	return s.client.Collection(transactionsCollection)
}

// Insert creates the document keyed by reference. Create fails with
// AlreadyExists when the reference is taken, which is the duplicate signal.
func (s *transactionStore) Insert(ctx context.Context, tx *models.Transaction) dto.InsertResult {
	wr, err := s.collection().Doc(tx.Reference).Create(ctx, newTransactionDoc(tx))
	if err == nil {
		tx.CreatedAt = wr.UpdateTime
		return dto.InsertSucceeded()
	}
	if isFirestoreAlreadyExists(err) {
		return dto.InsertDuplicate()
	}
	return dto.InsertFailed(err)
}

func (s *transactionStore) ListForReview(ctx context.Context, limit int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	iter := s.collection().
		Where("needsReview", "==", true).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var out []models.Transaction
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to list transactions for review", err)
		}
		var d transactionDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse transaction data", err)
		}
		t, err := d.model()
		if err != nil {
			return nil, errs.NewDatabaseError("read", "invalid stored amount", err)
		}
		out = append(out, t)
	}
	return out, nil
}
