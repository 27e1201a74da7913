package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/wifi-access-backend/internal/errs"
	"github.com/GregMSThompson/wifi-access-backend/internal/models"
)

const saleColumns = `sale_id::text, reference, client_name, client_id_number, client_phone, plan_id,
	plan_name, router_profile, price_paid::text, amount_received::text, access_code,
	duration_minutes, created_at`

type pgSaleStore struct {
	pool *pgxpool.Pool
}

func NewPGSaleStore(pool *pgxpool.Pool) *pgSaleStore {
	return &pgSaleStore{pool: pool}
}

// Reconcile claims the pending transaction for sale.Reference and inserts the
// sale in one database transaction. AmountReceived and CreatedAt are filled
// from the database.
func (s *pgSaleStore) Reconcile(ctx context.Context, sale *models.Sale) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errs.NewUnavailableError("reconcile", "failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var amount string
	err = tx.QueryRow(ctx,
		`UPDATE transactions
		 SET status = 'used', used_at = NOW()
		 WHERE reference = $1 AND status = 'pending' AND NOT needs_review
		 RETURNING amount::text`,
		sale.Reference,
	).Scan(&amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return s.claimFailure(ctx, tx, sale.Reference)
	}
	if err != nil {
		return errs.NewDatabaseError("reconcile", "failed to claim transaction", err)
	}
	if sale.AmountReceived, err = decimal.NewFromString(amount); err != nil {
		return errs.NewDatabaseError("reconcile", "invalid stored amount", err)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO sales (sale_id, reference, client_name, client_id_number, client_phone, plan_id,
		                    plan_name, router_profile, price_paid, amount_received, access_code, duration_minutes)
		 VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING created_at`,
		sale.SaleID, sale.Reference, sale.ClientName, sale.ClientIDNumber, sale.ClientPhone, sale.PlanID,
		sale.PlanName, sale.RouterProfile, sale.PricePaid.StringFixed(2), sale.AmountReceived.StringFixed(2),
		sale.AccessCode, sale.DurationMinutes,
	).Scan(&sale.CreatedAt)
	if constraint, ok := pgUniqueConstraint(err); ok {
		if constraint == constraintSaleAccessCode {
			return ErrAccessCodeTaken
		}
		return errs.NewAlreadyExistsError("reference already used")
	}
	if err != nil {
		return errs.NewDatabaseError("reconcile", "failed to create sale", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return errs.NewUnavailableError("reconcile", "failed to commit sale", err)
	}
	return nil
}

func (s *pgSaleStore) claimFailure(ctx context.Context, tx pgx.Tx, reference string) error {
	var (
		status      string
		needsReview bool
	)
	err := tx.QueryRow(ctx,
		`SELECT status, needs_review FROM transactions WHERE reference = $1`,
		reference,
	).Scan(&status, &needsReview)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return errs.NewNotFoundError("payment not found")
	case err != nil:
		return errs.NewDatabaseError("reconcile", "failed to read transaction", err)
	case status == string(models.TransactionUsed):
		return errs.NewAlreadyExistsError("reference already used")
	default:
		return errs.NewNotFoundError("payment is pending manual review")
	}
}

func (s *pgSaleStore) GetByCode(ctx context.Context, code string) (*models.Sale, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE access_code = $1`, code)
	sale, err := scanSale(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NewNotFoundError("ticket not found")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to get sale", err)
	}
	return sale, nil
}

func (s *pgSaleStore) ListSince(ctx context.Context, since time.Time) ([]*models.Sale, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE created_at >= $1 ORDER BY created_at DESC`,
		since,
	)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list sales", err)
	}
	defer rows.Close()

	var out []*models.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to scan sale", err)
		}
		out = append(out, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list sales", err)
	}
	return out, nil
}

func scanSale(row pgx.Row) (*models.Sale, error) {
	var (
		s             models.Sale
		price, amount string
	)
	if err := row.Scan(&s.SaleID, &s.Reference, &s.ClientName, &s.ClientIDNumber, &s.ClientPhone, &s.PlanID,
		&s.PlanName, &s.RouterProfile, &price, &amount, &s.AccessCode, &s.DurationMinutes, &s.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if s.PricePaid, err = decimal.NewFromString(price); err != nil {
		return nil, err
	}
	if s.AmountReceived, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	return &s, nil
}
