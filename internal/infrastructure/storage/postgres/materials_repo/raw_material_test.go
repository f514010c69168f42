package materials_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aquaplant/internal/core/entity"
	"aquaplant/internal/domain/materials"
)

func TestRawMaterialRepo_GetForUpdate(t *testing.T) {
	repo := NewRawMaterialRepo(nil)

	sql, args, err := repo.getForUpdateQuery(materials.Key{Material: "Labels", Variant: "500ml"}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, version, created_at, updated_at, material, variant, available_quantity, actual_count FROM raw_materials WHERE material = $1 AND variant = $2 LIMIT 1 FOR UPDATE",
		sql)
	assert.Equal(t, []any{"Labels", "500ml"}, args)
}

func TestRawMaterialRepo_UpdateChecksPreviousVersion(t *testing.T) {
	repo := NewRawMaterialRepo(nil)
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	count := int64(400)

	m := &materials.RawMaterial{
		BaseRow:           entity.NewBaseRow(now),
		Material:          "Caps",
		Variant:           "28mm",
		AvailableQuantity: 7,
		ActualCount:       &count,
	}
	m.Touch(now)

	sql, args, err := repo.updateQuery(m).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE raw_materials SET available_quantity = $1, actual_count = $2, version = $3, updated_at = $4 WHERE id = $5 AND version = $6",
		sql)
	assert.Equal(t, int64(7), args[0])
	assert.Equal(t, 2, args[2])
	assert.Equal(t, 1, args[5])
}
