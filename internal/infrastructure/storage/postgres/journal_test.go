package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aquaplant/internal/core/id"
	"aquaplant/internal/domain/stock"
)

func TestJournal_EncodeDecode(t *testing.T) {
	j, err := NewJournal(nil)
	require.NoError(t, err)

	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	productID := id.New()
	entry := stock.JournalEntry{
		Action:    "godown_transfer",
		ProductID: productID,
		ProductSN: "P-500",
		Quantity:  4,
		Changes:   map[string]any{"factory_quantity": 6, "godown_quantity": 4},
		At:        at,
	}

	rec, err := j.encode(entry)
	require.NoError(t, err)
	assert.False(t, id.IsNil(rec.ID))
	assert.Equal(t, CompressionNone, rec.CompressionAlgo)
	assert.Nil(t, rec.ChangesCompressed)
	require.NotNil(t, rec.ProductID)
	assert.Equal(t, productID, *rec.ProductID)

	back, err := j.decode(rec)
	require.NoError(t, err)
	assert.Equal(t, "P-500", back.ProductSN)
	assert.Equal(t, at, back.At)
	// JSON numbers come back as float64.
	assert.Equal(t, float64(6), back.Changes["factory_quantity"])
}

func TestJournal_CompressesLargeChanges(t *testing.T) {
	j, err := NewJournal(nil)
	require.NoError(t, err)
	j.compressThreshold = 64

	entry := stock.JournalEntry{
		Action:    "production",
		ProductSN: "P-500",
		Quantity:  10,
		Changes:   map[string]any{"note": strings.Repeat("caps ", 100)},
	}

	rec, err := j.encode(entry)
	require.NoError(t, err)
	assert.Equal(t, CompressionZstd, rec.CompressionAlgo)
	assert.Nil(t, rec.Changes)
	assert.NotEmpty(t, rec.ChangesCompressed)
	assert.Nil(t, rec.ProductID)
	assert.False(t, rec.CreatedAt.IsZero())

	back, err := j.decode(rec)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("caps ", 100), back.Changes["note"])
}

func TestJournal_InsertSQL(t *testing.T) {
	j, err := NewJournal(nil)
	require.NoError(t, err)

	rec, err := j.encode(stock.JournalEntry{Action: "production", ProductSN: "P-1", Quantity: 1})
	require.NoError(t, err)

	sql, args, err := j.builder.Insert(auditTable).SetMap(StructToMap(rec)).ToSql()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sql, "INSERT INTO sys_audit ("))
	assert.Len(t, args, len(auditColumns))
}

func TestJournal_PruneSQL(t *testing.T) {
	j, err := NewJournal(nil)
	require.NoError(t, err)
	cutoff := time.Date(2026, 1, 1, 5, 0, 0, 0, time.FixedZone("PKT", 5*3600))

	sql, args, err := j.pruneQuery(cutoff).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM sys_audit WHERE created_at < $1", sql)
	require.Len(t, args, 1)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), args[0])
}
