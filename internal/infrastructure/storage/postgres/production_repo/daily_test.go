package production_repo

import (
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aquaplant/internal/core/types"
)

func TestDailyRepo_DayWindowIsHalfOpen(t *testing.T) {
	repo := NewDailyRepo(nil)
	loc := time.FixedZone("PKT", 5*3600)
	day := types.DayOf(time.Date(2026, 3, 14, 23, 0, 0, 0, loc), loc)

	sql, args, err := repo.dayQuery(day).Where(squirrel.Eq{"product_sn": "P-500"}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, version, created_at, updated_at, product_id, product_sn, product_name, quantity FROM daily_production WHERE created_at >= $1 AND created_at < $2 AND product_sn = $3",
		sql)
	assert.Equal(t, time.Date(2026, 3, 13, 19, 0, 0, 0, time.UTC), args[0])
	assert.Equal(t, time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC), args[1])
}
