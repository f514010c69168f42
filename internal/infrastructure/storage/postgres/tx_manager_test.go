package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

// fakeTx satisfies pgx.Tx; any call on it panics.
type fakeTx struct {
	pgx.Tx
}

func TestStatementTimeoutSQL(t *testing.T) {
	assert.Equal(t, "SET LOCAL statement_timeout = '30000ms'", statementTimeoutSQL(DefaultStatementTimeout))
	assert.Equal(t, "SET LOCAL statement_timeout = '1500ms'", statementTimeoutSQL(1500*time.Millisecond))
	assert.Empty(t, statementTimeoutSQL(0))
	assert.Empty(t, statementTimeoutSQL(-time.Second))
}

func TestNewTxManager_Options(t *testing.T) {
	m := NewTxManager(&Pool{})
	assert.Equal(t, DefaultStatementTimeout, m.statementTimeout)

	m = NewTxManager(&Pool{}, WithStatementTimeout(5*time.Second))
	assert.Equal(t, 5*time.Second, m.statementTimeout)
}

func TestTxManager_NestedCallJoinsContextTransaction(t *testing.T) {
	m := NewTxManager(&Pool{})
	assert.Nil(t, m.GetTx(context.Background()))

	// A context that already carries a transaction runs fn inline, without
	// touching the pool.
	var outer fakeTx
	ctx := context.WithValue(context.Background(), txKey{}, &outer)
	called := false
	err := m.RunInTransaction(ctx, func(ctx context.Context) error {
		called = true
		assert.Same(t, &outer, m.GetTx(ctx))
		assert.Same(t, &outer, m.GetQuerier(ctx))
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)
}
