package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"aquaplant/pkg/logger"
)

//go:embed schema.sql
var schemaSQL string

// migrationLockID guards concurrent schema application by several replicas.
const migrationLockID = 0x61717561 // "aqua"

// Schema returns the embedded DDL.
func Schema() string {
	return schemaSQL
}

// Migrate applies the embedded schema. Statements are idempotent, so it is
// safe to call on every start.
func Migrate(ctx context.Context, txm *TxManager) error {
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		q := txm.GetQuerier(ctx)
		if _, err := q.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", migrationLockID); err != nil {
			return fmt.Errorf("lock schema migration: %w", err)
		}
		if _, err := q.Exec(ctx, schemaSQL); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
		logger.Info(ctx, "database schema applied")
		return nil
	})
}
