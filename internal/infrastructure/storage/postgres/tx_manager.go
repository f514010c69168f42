package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"aquaplant/internal/core/tx"
	"aquaplant/pkg/logger"
)

var tracer = otel.Tracer("aquaplant/tx")

var _ tx.Manager = (*TxManager)(nil)

// DefaultStatementTimeout bounds every statement of a ledger transaction.
const DefaultStatementTimeout = 30 * time.Second

// TxManager runs ledger changes in READ COMMITTED transactions. The active
// transaction travels in the context so repositories join it through
// GetQuerier; a nested RunInTransaction joins the outer one.
type TxManager struct {
	pool             *pgxpool.Pool
	statementTimeout time.Duration
}

// TxManagerOption configures a TxManager.
type TxManagerOption func(*TxManager)

// WithStatementTimeout overrides DefaultStatementTimeout. Zero disables it.
func WithStatementTimeout(d time.Duration) TxManagerOption {
	return func(m *TxManager) {
		m.statementTimeout = d
	}
}

// NewTxManager creates a new transaction manager.
func NewTxManager(pool *Pool, opts ...TxManagerOption) *TxManager {
	m := &TxManager{pool: pool.Pool, statementTimeout: DefaultStatementTimeout}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type txKey struct{}

// RunInTransaction executes fn within a transaction, or inside the caller's
// transaction when ctx already carries one. fn's error rolls everything back.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.GetTx(ctx) != nil {
		return fn(ctx)
	}

	ctx, span := tracer.Start(ctx, "ledger.transaction",
		trace.WithAttributes(
			attribute.String("db.isolation", "read_committed"),
			attribute.Int64("db.statement_timeout_ms", m.statementTimeout.Milliseconds()),
		))
	defer span.End()

	pgTx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("begin transaction: %w", err)
	}

	if stmt := statementTimeoutSQL(m.statementTimeout); stmt != "" {
		if _, err := pgTx.Exec(ctx, stmt); err != nil {
			_ = pgTx.Rollback(context.Background())
			return fmt.Errorf("set statement_timeout: %w", err)
		}
	}

	if err := fn(context.WithValue(ctx, txKey{}, pgTx)); err != nil {
		span.SetAttributes(attribute.Bool("db.rolled_back", true))
		// ctx may already be cancelled; the rollback still has to reach the server.
		if rbErr := pgTx.Rollback(context.Background()); rbErr != nil {
			logger.Error(ctx, "rollback failed", "error", rbErr, "original_error", err)
		}
		return err
	}

	if err := pgTx.Commit(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// statementTimeoutSQL returns the SET LOCAL for d, or "" when d disables the timeout.
func statementTimeoutSQL(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", d.Milliseconds())
}

// GetTx returns the transaction carried by ctx, or nil.
func (m *TxManager) GetTx(ctx context.Context) pgx.Tx {
	if t, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return t
	}
	return nil
}

// Querier is satisfied by both pgx.Tx and the pool, so repositories work
// inside and outside transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GetQuerier returns the context's transaction, or the pool outside one.
func (m *TxManager) GetQuerier(ctx context.Context) Querier {
	if t := m.GetTx(ctx); t != nil {
		return t
	}
	return m.pool
}
