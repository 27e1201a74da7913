package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/wifi-access-backend/internal/errs"
)

// ErrAccessCodeTaken is returned by Reconcile when the generated access code
// is already issued.
var ErrAccessCodeTaken = errs.ErrAccessCodeTaken

const (
	pgUniqueViolation = "23505"

	constraintSaleAccessCode = "sales_access_code_key"
)

func pgUniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

func isFirestoreAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

func isFirestoreNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
