package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/wifi-access-backend/internal/dto"
	"github.com/GregMSThompson/wifi-access-backend/internal/errs"
	"github.com/GregMSThompson/wifi-access-backend/internal/models"
	"github.com/GregMSThompson/wifi-access-backend/internal/parser"
	"github.com/GregMSThompson/wifi-access-backend/pkg/helpers"
)

// --- Fakes ---

// fakeTransactionStore enforces reference uniqueness like the real stores and
// can be scripted to fail transiently for the first N inserts.
type fakeTransactionStore struct {
	rows       map[string]models.Transaction
	failFirst  int
	failErr    error
	inserts    int
	review     []models.Transaction
	reviewArgs int
}

func newFakeTransactionStore() *fakeTransactionStore {
	return &fakeTransactionStore{rows: make(map[string]models.Transaction)}
}

func (f *fakeTransactionStore) Insert(_ context.Context, tx *models.Transaction) dto.InsertResult {
	f.inserts++
	if f.inserts <= f.failFirst {
		return dto.InsertFailed(f.failErr)
	}
	if _, ok := f.rows[tx.Reference]; ok {
		return dto.InsertDuplicate()
	}
	f.rows[tx.Reference] = *tx
	return dto.InsertSucceeded()
}

func (f *fakeTransactionStore) ListForReview(_ context.Context, limit int) ([]models.Transaction, error) {
	f.reviewArgs = limit
	return f.review, nil
}

type sleepRecorder struct {
	waits []time.Duration
	err   error
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return r.err
}

func (r *sleepRecorder) total() time.Duration {
	var sum time.Duration
	for _, w := range r.waits {
		sum += w
	}
	return sum
}

func newTestIngestService(store *fakeTransactionStore, rec *sleepRecorder) *ingestService {
	svc := NewIngestService(store)
	svc.sleep = rec.sleep
	svc.clockNow = func() time.Time { return time.UnixMilli(1718000000123) }
	svc.randIntn = func(int) int { return 7 }
	return svc
}

const pagoMovilTitle = "PagomóvilBDV recibido"

const pagoMovilBody = "Recibiste un PagomóvilBDV de Juan Perez por Bs. 1.234,56 bajo el número de operación 987654"

// --- Ingest tests ---

func TestIngest_StoredThenDuplicate(t *testing.T) {
	store := newFakeTransactionStore()
	rec := &sleepRecorder{}
	svc := newTestIngestService(store, rec)
	ctx := helpers.TestCtx()

	parsed := parser.Parse(pagoMovilTitle, pagoMovilBody)
	first := svc.Ingest(ctx, parsed, dto.IngestContext{Title: pagoMovilTitle, Body: pagoMovilBody})
	if first.Outcome != dto.IngestStored {
		t.Fatalf("expected stored, got %s", first.Outcome)
	}
	second := svc.Ingest(ctx, parsed, dto.IngestContext{Title: pagoMovilTitle, Body: pagoMovilBody})
	if second.Outcome != dto.IngestDuplicateReference {
		t.Fatalf("expected duplicate, got %s", second.Outcome)
	}
	if second.Attempts != 1 {
		t.Fatalf("duplicate must not be retried, attempts=%d", second.Attempts)
	}
	if len(rec.waits) != 0 {
		t.Fatalf("expected no backoff, got %v", rec.waits)
	}

	row := store.rows["987654"]
	if !row.Amount.Equal(decimal.RequireFromString("1234.56")) {
		t.Errorf("unexpected amount %s", row.Amount)
	}
	if row.BankOrigin != "BDV" || row.Status != models.TransactionPending || row.NeedsReview {
		t.Errorf("unexpected record %+v", row)
	}
}

func TestIngest_TransientTwiceThenStored(t *testing.T) {
	store := newFakeTransactionStore()
	store.failFirst = 2
	store.failErr = errors.New("connection reset")
	rec := &sleepRecorder{}
	svc := newTestIngestService(store, rec)

	res := svc.Ingest(helpers.TestCtx(), parser.Parse(pagoMovilTitle, pagoMovilBody), dto.IngestContext{})
	if res.Outcome != dto.IngestStored {
		t.Fatalf("expected stored, got %s (%v)", res.Outcome, res.Err)
	}
	if res.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", res.Attempts)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(rec.waits) != len(want) || rec.waits[0] != want[0] || rec.waits[1] != want[1] {
		t.Fatalf("expected linear backoff %v, got %v", want, rec.waits)
	}
	if rec.total() < 3*time.Second {
		t.Fatalf("expected at least 3s of backoff, got %s", rec.total())
	}
}

func TestIngest_PersistenceFailed(t *testing.T) {
	store := newFakeTransactionStore()
	store.failFirst = 10
	store.failErr = errors.New("db down")
	rec := &sleepRecorder{}
	svc := newTestIngestService(store, rec)

	res := svc.Ingest(helpers.TestCtx(), parser.Parse(pagoMovilTitle, pagoMovilBody), dto.IngestContext{})
	if res.Outcome != dto.IngestPersistenceFailed {
		t.Fatalf("expected persistence failed, got %s", res.Outcome)
	}
	if store.inserts != 3 {
		t.Fatalf("expected exactly 3 inserts, got %d", store.inserts)
	}
	if len(rec.waits) != 2 {
		t.Fatalf("expected no wait after the last attempt, got %v", rec.waits)
	}
	if !errors.Is(res.Err, store.failErr) {
		t.Fatalf("expected last cause, got %v", res.Err)
	}
}

func TestIngest_CancelledDuringBackoff(t *testing.T) {
	store := newFakeTransactionStore()
	store.failFirst = 10
	store.failErr = errors.New("db down")
	rec := &sleepRecorder{err: context.Canceled}
	svc := newTestIngestService(store, rec)

	res := svc.Ingest(helpers.TestCtx(), parser.Parse(pagoMovilTitle, pagoMovilBody), dto.IngestContext{})
	if res.Outcome != dto.IngestPersistenceFailed || res.Attempts != 1 {
		t.Fatalf("expected failure after 1 attempt, got %s after %d", res.Outcome, res.Attempts)
	}
	if !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("expected context error, got %v", res.Err)
	}
}

func TestIngest_UnrecognizedStoresPlaceholder(t *testing.T) {
	store := newFakeTransactionStore()
	svc := newTestIngestService(store, &sleepRecorder{})
	ic := dto.IngestContext{IP: "10.0.0.1", UserAgent: "forwarder/1.0", Title: "Texto desconocido", Body: "hola"}

	res := svc.Ingest(helpers.TestCtx(), parser.Parse(ic.Title, ic.Body), ic)
	if res.Outcome != dto.IngestStored {
		t.Fatalf("expected stored, got %s", res.Outcome)
	}
	rec := res.Record
	if rec.Reference != "ERR-1718000000123-007" {
		t.Fatalf("unexpected placeholder reference %q", rec.Reference)
	}
	if !strings.HasPrefix(rec.Reference, "ERR-") || !rec.NeedsReview || rec.ReviewReason != models.ReviewUnrecognizedFormat {
		t.Fatalf("placeholder not flagged for review: %+v", rec)
	}
	if !rec.Amount.IsZero() || rec.BankOrigin != "UNKNOWN" {
		t.Fatalf("unexpected placeholder fields: %+v", rec)
	}

	var raw struct {
		Context dto.IngestContext `json:"context"`
		Parsed  struct {
			Recognized bool `json:"recognized"`
		} `json:"parsed"`
	}
	if err := json.Unmarshal(rec.RawPayload, &raw); err != nil {
		t.Fatalf("raw payload is not json: %v", err)
	}
	if raw.Context.IP != "10.0.0.1" || raw.Context.Body != "hola" || raw.Parsed.Recognized {
		t.Fatalf("unexpected raw payload: %s", rec.RawPayload)
	}
}

func TestBuildRecord_AmbiguousAmountFlagged(t *testing.T) {
	svc := newTestIngestService(newFakeTransactionStore(), &sleepRecorder{})
	parsed := parser.Result{
		Kind:            parser.KindPagoMovil,
		Bank:            "BDV",
		Amount:          decimal.Zero,
		Reference:       helpers.Ptr("111"),
		Recognized:      true,
		AmountAmbiguous: true,
	}
	rec := svc.BuildRecord(parsed, dto.IngestContext{})
	if rec.Reference != "111" || !rec.NeedsReview || rec.ReviewReason != models.ReviewAmbiguousAmount {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestBuildRecord_RoundsToTwoDecimals(t *testing.T) {
	svc := newTestIngestService(newFakeTransactionStore(), &sleepRecorder{})
	rec := svc.BuildRecord(parser.Result{
		Bank:       "BDV",
		Amount:     decimal.RequireFromString("10.005"),
		Reference:  helpers.Ptr("222"),
		Recognized: true,
	}, dto.IngestContext{})
	if rec.Amount.StringFixed(2) != "10.01" {
		t.Fatalf("expected 10.01, got %s", rec.Amount.StringFixed(2))
	}
}

// --- RecordManual tests ---

func TestRecordManual(t *testing.T) {
	store := newFakeTransactionStore()
	svc := newTestIngestService(store, &sleepRecorder{})
	ctx := helpers.TestCtx()

	res, err := svc.RecordManual(ctx, dto.ManualTransactionRequest{Reference: " 5555 ", Amount: "15,50"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != dto.IngestStored {
		t.Fatalf("expected stored, got %s", res.Outcome)
	}
	row := store.rows["5555"]
	if row.BankOrigin != "MANUAL" || row.Amount.StringFixed(2) != "15.50" || row.NeedsReview {
		t.Fatalf("unexpected record %+v", row)
	}

	res, err = svc.RecordManual(ctx, dto.ManualTransactionRequest{Reference: "5555", Amount: "1", Bank: "bdv"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != dto.IngestDuplicateReference {
		t.Fatalf("expected duplicate, got %s", res.Outcome)
	}
}

func TestRecordManual_Validation(t *testing.T) {
	svc := newTestIngestService(newFakeTransactionStore(), &sleepRecorder{})
	cases := []dto.ManualTransactionRequest{
		{Reference: "", Amount: "10"},
		{Reference: "a/b", Amount: "10"},
		{Reference: "1", Amount: "abc"},
		{Reference: "1", Amount: "0"},
		{Reference: "1", Amount: "1,234.56"},
	}
	for _, req := range cases {
		_, err := svc.RecordManual(helpers.TestCtx(), req)
		var ve *errs.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%+v: expected ValidationError, got %v", req, err)
		}
	}
}

func TestPendingReview(t *testing.T) {
	store := newFakeTransactionStore()
	store.review = []models.Transaction{{Reference: "ERR-1-001", NeedsReview: true}}
	svc := newTestIngestService(store, &sleepRecorder{})

	out, err := svc.PendingReview(helpers.TestCtx(), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || store.reviewArgs != 20 {
		t.Fatalf("unexpected result %v (limit %d)", out, store.reviewArgs)
	}
}
