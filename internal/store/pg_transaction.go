package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/wifi-access-backend/internal/dto"
	"github.com/GregMSThompson/wifi-access-backend/internal/errs"
	"github.com/GregMSThompson/wifi-access-backend/internal/models"
)

type pgTransactionStore struct {
	pool *pgxpool.Pool
}

func NewPGTransactionStore(pool *pgxpool.Pool) *pgTransactionStore {
	return &pgTransactionStore{pool: pool}
}

// Insert performs one atomic insert. The unique constraint on reference is
// the only duplicate detection; there is no read-before-write.
func (s *pgTransactionStore) Insert(ctx context.Context, tx *models.Transaction) dto.InsertResult {
	var raw []byte
	if len(tx.RawPayload) > 0 {
		raw = tx.RawPayload
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO transactions (reference, amount, bank_origin, status, needs_review, review_reason, raw_payload)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
		 RETURNING created_at`,
		tx.Reference, tx.Amount.StringFixed(2), tx.BankOrigin, string(tx.Status),
		tx.NeedsReview, tx.ReviewReason, raw,
	).Scan(&tx.CreatedAt)
	if err == nil {
		return dto.InsertSucceeded()
	}
	if _, ok := pgUniqueConstraint(err); ok {
		return dto.InsertDuplicate()
	}
	return dto.InsertFailed(err)
}

func (s *pgTransactionStore) ListForReview(ctx context.Context, limit int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT reference, amount::text, bank_origin, status, needs_review,
		        COALESCE(review_reason, ''), raw_payload, created_at, used_at
		 FROM transactions
		 WHERE needs_review
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list transactions for review", err)
	}
	defer rows.Close()

	out := make([]models.Transaction, 0, limit)
	for rows.Next() {
		var (
			t      models.Transaction
			amount string
			status string
			raw    []byte
			usedAt *time.Time
		)
		if err := rows.Scan(&t.Reference, &amount, &t.BankOrigin, &status, &t.NeedsReview,
			&t.ReviewReason, &raw, &t.CreatedAt, &usedAt); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to scan transaction", err)
		}
		t.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, errs.NewDatabaseError("read", "invalid stored amount", err)
		}
		t.Status = models.TransactionStatus(status)
		t.RawPayload = raw
		t.UsedAt = usedAt
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list transactions for review", err)
	}
	return out, nil
}
