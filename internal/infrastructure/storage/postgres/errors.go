package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"aquaplant/internal/core/apperror"
)

// PostgreSQL error codes the repositories react to.
const (
	pgNumericOutOfRange    = "22003"
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// ClassifyError maps constraint violations onto AppErrors. Anything else is
// returned unchanged and surfaces as STORE_UNAVAILABLE from the domain layer.
func ClassifyError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgNumericOutOfRange:
		return apperror.NewValidation("quantity total out of range").
			WithDetail("column", pgErr.ColumnName).
			WithCause(err)
	case pgUniqueViolation:
		return apperror.NewConflict("row already exists").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case pgCheckViolation:
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "stock quantities cannot become negative").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case pgSerializationFailure, pgDeadlockDetected:
		return apperror.NewConflict("concurrent update, please retry").
			WithDetail("retryable", true).
			WithCause(err)
	}
	return err
}
