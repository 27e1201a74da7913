package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/wifi-access-backend/internal/dto"
	"github.com/GregMSThompson/wifi-access-backend/internal/errs"
	"github.com/GregMSThompson/wifi-access-backend/internal/models"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("pool error: %v", err)
	}
	t.Cleanup(pool.Close)
	if _, err := pool.Exec(ctx, Schema); err != nil {
		t.Fatalf("schema error: %v", err)
	}
	return pool
}

func TestPGTransactionInsert(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	store := NewPGTransactionStore(pool)

	tx := &models.Transaction{
		Reference:  uniqueRef("1"),
		Amount:     decimal.RequireFromString("1234.56"),
		BankOrigin: "BDV",
		Status:     models.TransactionPending,
		RawPayload: []byte(`{"title":"t","body":"b"}`),
	}
	if res := store.Insert(ctx, tx); res.Outcome != dto.InsertOK {
		t.Fatalf("expected ok, got %s: %v", res.Outcome, res.Err)
	}
	if tx.CreatedAt.IsZero() {
		t.Fatalf("expected created at from database")
	}
	if res := store.Insert(ctx, tx); res.Outcome != dto.InsertConflict {
		t.Fatalf("expected conflict, got %s: %v", res.Outcome, res.Err)
	}

	var amount string
	if err := pool.QueryRow(ctx, `SELECT amount::text FROM transactions WHERE reference = $1`, tx.Reference).Scan(&amount); err != nil {
		t.Fatalf("select error: %v", err)
	}
	if amount != "1234.56" {
		t.Fatalf("unexpected stored amount: %s", amount)
	}
}

func TestPGSaleReconcile(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	txStore := NewPGTransactionStore(pool)
	sales := NewPGSaleStore(pool)

	ref := uniqueRef("2")
	if res := txStore.Insert(ctx, &models.Transaction{
		Reference:  ref,
		Amount:     decimal.RequireFromString("40.50"),
		BankOrigin: "BDV",
		Status:     models.TransactionPending,
	}); res.Outcome != dto.InsertOK {
		t.Fatalf("insert error: %v", res.Err)
	}

	code := uniqueCode("C")
	sale := &models.Sale{
		SaleID:          uuid.NewString(),
		Reference:       ref,
		ClientName:      "Ana",
		ClientIDNumber:  "V123",
		ClientPhone:     "04141234567",
		PlanID:          2,
		PlanName:        "3 Horas",
		RouterProfile:   "3h",
		PricePaid:       decimal.NewFromInt(2),
		AccessCode:      code,
		DurationMinutes: 180,
	}
	if err := sales.Reconcile(ctx, sale); err != nil {
		t.Fatalf("reconcile error: %v", err)
	}
	if !sale.AmountReceived.Equal(decimal.RequireFromString("40.50")) {
		t.Fatalf("unexpected amount: %s", sale.AmountReceived)
	}

	got, err := sales.GetByCode(ctx, code)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.ClientIDNumber != "V123" || got.DurationMinutes != 180 {
		t.Fatalf("unexpected sale: %+v", got)
	}

	var exists *errs.AlreadyExistsError
	again := *sale
	again.SaleID = uuid.NewString()
	if err := sales.Reconcile(ctx, &again); !errors.As(err, &exists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	listed, err := sales.ListSince(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	var found bool
	for _, s := range listed {
		found = found || s.AccessCode == code
	}
	if !found {
		t.Fatalf("expected sale %s in list", code)
	}
}

func TestPGSaleReconcileReviewAndCodeCollision(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	txStore := NewPGTransactionStore(pool)
	sales := NewPGSaleStore(pool)

	flagged := uniqueRef("3")
	txStore.Insert(ctx, &models.Transaction{
		Reference: flagged, Amount: decimal.Zero, BankOrigin: "BDV",
		Status: models.TransactionPending, NeedsReview: true, ReviewReason: models.ReviewAmbiguousAmount,
	})
	var notFound *errs.NotFoundError
	err := sales.Reconcile(ctx, &models.Sale{
		SaleID: uuid.NewString(), Reference: flagged, AccessCode: uniqueCode("R"),
		PlanID: 1, DurationMinutes: 60,
	})
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found for record under review, got %v", err)
	}

	first, second := uniqueRef("4"), uniqueRef("5")
	for _, ref := range []string{first, second} {
		txStore.Insert(ctx, &models.Transaction{
			Reference: ref, Amount: decimal.NewFromInt(10), BankOrigin: "BDV", Status: models.TransactionPending,
		})
	}
	code := uniqueCode("K")
	if err := sales.Reconcile(ctx, &models.Sale{
		SaleID: uuid.NewString(), Reference: first, AccessCode: code, PlanID: 1, DurationMinutes: 60,
	}); err != nil {
		t.Fatalf("reconcile error: %v", err)
	}
	err = sales.Reconcile(ctx, &models.Sale{
		SaleID: uuid.NewString(), Reference: second, AccessCode: code, PlanID: 1, DurationMinutes: 60,
	})
	if !errors.Is(err, ErrAccessCodeTaken) {
		t.Fatalf("expected access code taken, got %v", err)
	}

	var status string
	if err := pool.QueryRow(ctx, `SELECT status FROM transactions WHERE reference = $1`, second).Scan(&status); err != nil {
		t.Fatalf("select error: %v", err)
	}
	if status != string(models.TransactionPending) {
		t.Fatalf("claim should roll back on code collision, got status %s", status)
	}
}
