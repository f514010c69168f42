package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"aquaplant/internal/core/apperror"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"unique", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "factory_stock_product_sn_key"}, apperror.CodeConflict},
		{"check", fmt.Errorf("update: %w", &pgconn.PgError{Code: pgCheckViolation}), apperror.CodeBusinessRule},
		{"deadlock", &pgconn.PgError{Code: pgDeadlockDetected}, apperror.CodeConflict},
		{"bigint overflow", &pgconn.PgError{Code: pgNumericOutOfRange, ColumnName: "quantity"}, apperror.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			assert.True(t, apperror.HasCode(got, tt.code))
			assert.True(t, errors.Is(got, tt.err) || errors.As(got, new(*pgconn.PgError)))
		})
	}
}

func TestClassifyError_PassesThroughOthers(t *testing.T) {
	plain := errors.New("connection refused")
	assert.Same(t, plain, ClassifyError(plain))

	other := &pgconn.PgError{Code: "42P01"}
	assert.Equal(t, error(other), ClassifyError(other))
}
