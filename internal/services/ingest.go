package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/wifi-access-backend/internal/dto"
	"github.com/GregMSThompson/wifi-access-backend/internal/errs"
	"github.com/GregMSThompson/wifi-access-backend/internal/models"
	"github.com/GregMSThompson/wifi-access-backend/internal/parser"
	"github.com/GregMSThompson/wifi-access-backend/pkg/logger"
)

const (
	ingestMaxAttempts = 3
	ingestBackoffStep = time.Second

	placeholderPrefix = "ERR-"
	placeholderBank   = "UNKNOWN"
	manualBank        = "MANUAL"
)

// transactionISStore is the storage surface of the ingestor. Insert must be a
// single atomic insert that classifies its own failure.
type transactionISStore interface {
	Insert(ctx context.Context, tx *models.Transaction) dto.InsertResult
	ListForReview(ctx context.Context, limit int) ([]models.Transaction, error)
}

type ingestService struct {
	store    transactionISStore
	clockNow func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	randIntn func(n int) int
}

func NewIngestService(store transactionISStore) *ingestService {
	return &ingestService{
		store:    store,
		clockNow: time.Now,
		sleep:    sleepContext,
		randIntn: rand.IntN,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Ingest builds the record for one parsed notification and persists it.
func (s *ingestService) Ingest(ctx context.Context, parsed parser.Result, ic dto.IngestContext) dto.IngestResult {
	record := s.BuildRecord(parsed, ic)
	if !parsed.Recognized {
		logger.FromContext(ctx).Warn("unrecognized notification stored for manual review",
			"reference", record.Reference, "title", ic.Title)
	}
	return s.persist(ctx, record)
}

// BuildRecord turns a parse result into the record to insert. Unrecognized
// notifications get a placeholder reference and are flagged for review.
func (s *ingestService) BuildRecord(parsed parser.Result, ic dto.IngestContext) *models.Transaction {
	record := &models.Transaction{
		Status:     models.TransactionPending,
		RawPayload: rawPayload(ic, parsed),
	}

	if !parsed.Recognized || parsed.Reference == nil {
		record.Reference = s.placeholderReference()
		record.Amount = decimal.Zero
		record.BankOrigin = placeholderBank
		record.NeedsReview = true
		record.ReviewReason = models.ReviewUnrecognizedFormat
		return record
	}

	record.Reference = *parsed.Reference
	record.Amount = parsed.Amount.Round(2)
	record.BankOrigin = parsed.Bank
	if parsed.AmountAmbiguous {
		record.NeedsReview = true
		record.ReviewReason = models.ReviewAmbiguousAmount
	}
	return record
}

// RecordManual stores a payment reported by an operator. It goes through the
// same retry and duplicate handling as notifications.
func (s *ingestService) RecordManual(ctx context.Context, req dto.ManualTransactionRequest) (dto.IngestResult, error) {
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		return dto.IngestResult{}, errs.NewValidationError("reference is required")
	}
	if strings.ContainsAny(reference, "/ ") {
		return dto.IngestResult{}, errs.NewValidationError("reference must not contain spaces or slashes")
	}
	amount, ambiguous := parser.NormalizeAmount(req.Amount)
	if ambiguous || !amount.IsPositive() {
		return dto.IngestResult{}, errs.NewValidationError("amount must be a positive number")
	}
	bank := strings.ToUpper(strings.TrimSpace(req.Bank))
	if bank == "" {
		bank = manualBank
	}

	raw, _ := json.Marshal(map[string]any{"source": "manual", "request": req})
	record := &models.Transaction{
		Reference:  reference,
		Amount:     amount.Round(2),
		BankOrigin: bank,
		Status:     models.TransactionPending,
		RawPayload: raw,
	}
	return s.persist(ctx, record), nil
}

func (s *ingestService) PendingReview(ctx context.Context, limit int) ([]models.Transaction, error) {
	return s.store.ListForReview(ctx, limit)
}

// persist makes up to ingestMaxAttempts inserts. A conflict ends the loop at
// once; transient failures wait attempt*ingestBackoffStep before the next try.
func (s *ingestService) persist(ctx context.Context, record *models.Transaction) dto.IngestResult {
	log := logger.FromContext(ctx).With("reference", record.Reference)

	var (
		lastErr  error
		attempts int
	)
	for attempt := 1; attempt <= ingestMaxAttempts; attempt++ {
		attempts = attempt
		res := s.store.Insert(ctx, record)
		switch res.Outcome {
		case dto.InsertOK:
			log.Info("transaction stored", "attempt", attempt, "amount", record.Amount.StringFixed(2),
				"bank", record.BankOrigin, "needs_review", record.NeedsReview)
			return dto.IngestResult{Outcome: dto.IngestStored, Record: record, Attempts: attempt}
		case dto.InsertConflict:
			log.Warn("duplicate reference", "attempt", attempt)
			return dto.IngestResult{Outcome: dto.IngestDuplicateReference, Record: record, Attempts: attempt}
		}

		lastErr = res.Err
		if attempt == ingestMaxAttempts {
			break
		}
		wait := time.Duration(attempt) * ingestBackoffStep
		log.Warn("transaction insert failed, retrying", "attempt", attempt, "backoff", wait, "error", res.Err)
		if err := s.sleep(ctx, wait); err != nil {
			lastErr = err
			break
		}
	}

	log.Error("transaction persistence failed", "error", lastErr)
	return dto.IngestResult{
		Outcome:  dto.IngestPersistenceFailed,
		Record:   record,
		Attempts: attempts,
		Err:      lastErr,
	}
}

func (s *ingestService) placeholderReference() string {
	return fmt.Sprintf("%s%d-%03d", placeholderPrefix, s.clockNow().UnixMilli(), s.randIntn(1000))
}

func rawPayload(ic dto.IngestContext, parsed parser.Result) json.RawMessage {
	raw, err := json.Marshal(struct {
		Context dto.IngestContext `json:"context"`
		Parsed  parser.Result     `json:"parsed"`
	}{ic, parsed})
	if err != nil {
		return nil
	}
	return raw
}
