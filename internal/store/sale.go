package store

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"

	"github.com/GregMSThompson/wifi-access-backend/internal/errs"
	"github.com/GregMSThompson/wifi-access-backend/internal/models"
	"github.com/GregMSThompson/wifi-access-backend/pkg/logger"
)

const salesCollection = "sales"

// saleDoc is keyed by access code so the document id enforces code uniqueness.
type saleDoc struct {
	SaleID          string    `firestore:"saleId"`
	Reference       string    `firestore:"reference"`
	ClientName      string    `firestore:"clientName"`
	ClientIDNumber  string    `firestore:"clientIdNumber"`
	ClientPhone     string    `firestore:"clientPhone"`
	PlanID          int       `firestore:"planId"`
	PlanName        string    `firestore:"planName"`
	RouterProfile   string    `firestore:"routerProfile"`
	PricePaid       string    `firestore:"pricePaid"`
	AmountReceived  string    `firestore:"amountReceived"`
	AccessCode      string    `firestore:"accessCode"`
	DurationMinutes int       `firestore:"durationMinutes"`
	CreatedAt       time.Time `firestore:"createdAt,serverTimestamp"`
}

func newSaleDoc(s *models.Sale) saleDoc {
	return saleDoc{
		SaleID:          s.SaleID,
		Reference:       s.Reference,
		ClientName:      s.ClientName,
		ClientIDNumber:  s.ClientIDNumber,
		ClientPhone:     s.ClientPhone,
		PlanID:          s.PlanID,
		PlanName:        s.PlanName,
		RouterProfile:   s.RouterProfile,
		PricePaid:       s.PricePaid.StringFixed(2),
		AmountReceived:  s.AmountReceived.StringFixed(2),
		AccessCode:      s.AccessCode,
		DurationMinutes: s.DurationMinutes,
	}
}

func (d saleDoc) model() (*models.Sale, error) {
	price, err := decimal.NewFromString(d.PricePaid)
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(d.AmountReceived)
	if err != nil {
		return nil, err
	}
	return &models.Sale{
		SaleID:          d.SaleID,
		Reference:       d.Reference,
		ClientName:      d.ClientName,
		ClientIDNumber:  d.ClientIDNumber,
		ClientPhone:     d.ClientPhone,
		PlanID:          d.PlanID,
		PlanName:        d.PlanName,
		RouterProfile:   d.RouterProfile,
		PricePaid:       price,
		AmountReceived:  amount,
		AccessCode:      d.AccessCode,
		DurationMinutes: d.DurationMinutes,
		CreatedAt:       d.CreatedAt,
	}, nil
}

type saleStore struct {
	client *firestore.Client
}

func NewSaleStore(client *firestore.Client) *saleStore {
	return &saleStore{client: client}
}

func (s *saleStore) collection() *firestore.CollectionRef {
	return s.client.Collection(salesCollection)
}

// Reconcile claims the transaction and creates the sale inside one Firestore
// transaction. All reads happen before the writes. Timestamps come from the
// commit time, matching NOW() in the Postgres store.
func (s *saleStore) Reconcile(ctx context.Context, sale *models.Sale) error {
	txRef := s.client.Collection(transactionsCollection).Doc(sale.Reference)
	saleRef := s.collection().Doc(sale.AccessCode)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, t *firestore.Transaction) error {
		txSnap, err := t.Get(txRef)
		if isFirestoreNotFound(err) {
			return errs.NewNotFoundError("payment not found")
		}
		if err != nil {
			return err
		}
		codeSnap, err := t.Get(saleRef)
		if err != nil && !isFirestoreNotFound(err) {
			return err
		}
		if codeSnap != nil && codeSnap.Exists() {
			return ErrAccessCodeTaken
		}

		var d transactionDoc
		if err := txSnap.DataTo(&d); err != nil {
			return err
		}
		switch {
		case d.Status == string(models.TransactionUsed):
			return errs.NewAlreadyExistsError("reference already used")
		case d.NeedsReview:
			return errs.NewNotFoundError("payment is pending manual review")
		}
		amount, err := decimal.NewFromString(d.Amount)
		if err != nil {
			return err
		}

		sale.AmountReceived = amount
		if err := t.Update(txRef, []firestore.Update{
			{Path: "status", Value: string(models.TransactionUsed)},
			{Path: "usedAt", Value: firestore.ServerTimestamp},
		}); err != nil {
			return err
		}
		return t.Create(saleRef, newSaleDoc(sale))
	})

	var (
		notFound *errs.NotFoundError
		exists   *errs.AlreadyExistsError
	)
	switch {
	case err == nil:
		s.loadCreatedAt(ctx, saleRef, sale)
		return nil
	case errors.Is(err, ErrAccessCodeTaken), errors.As(err, &notFound), errors.As(err, &exists):
		return err
	case isFirestoreAlreadyExists(err):
		// another request created this code between our read and commit
		return ErrAccessCodeTaken
	default:
		return errs.NewUnavailableError("reconcile", "failed to reconcile sale", err)
	}
}

// loadCreatedAt reads back the commit timestamp. The sale is already stored,
// so a failed read only falls back to the local clock.
func (s *saleStore) loadCreatedAt(ctx context.Context, ref *firestore.DocumentRef, sale *models.Sale) {
	snap, err := ref.Get(ctx)
	if err == nil {
		var d saleDoc
		if err = snap.DataTo(&d); err == nil {
			sale.CreatedAt = d.CreatedAt
			return
		}
	}
	logger.FromContext(ctx).Warn("failed to read sale timestamp", "code", sale.AccessCode, "error", err)
	sale.CreatedAt = time.Now().UTC()
}

func (s *saleStore) GetByCode(ctx context.Context, code string) (*models.Sale, error) {
	doc, err := s.collection().Doc(code).Get(ctx)
	if isFirestoreNotFound(err) {
		return nil, errs.NewNotFoundError("ticket not found")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to get sale", err)
	}
	var d saleDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse sale data", err)
	}
	sale, err := d.model()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "invalid stored amount", err)
	}
	return sale, nil
}

func (s *saleStore) ListSince(ctx context.Context, since time.Time) ([]*models.Sale, error) {
	iter := s.collection().
		Where("createdAt", ">=", since).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var out []*models.Sale
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to list sales", err)
		}
		var d saleDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse sale data", err)
		}
		sale, err := d.model()
		if err != nil {
			return nil, errs.NewDatabaseError("read", "invalid stored amount", err)
		}
		out = append(out, sale)
	}
	return out, nil
}
