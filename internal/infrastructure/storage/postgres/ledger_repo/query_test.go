package ledger_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ganji/internal/core/id"
	"ganji/internal/domain/calendar"
)

const windowWhere = "WHERE ((COALESCE(sale_date, created_at) >= $1 AND COALESCE(sale_date, created_at) < $2) " +
	"OR (sale_date IS NULL AND created_at IS NULL))"

func TestSaleListQuery_WindowInShopZone(t *testing.T) {
	loc := time.FixedZone("EAT", 3*60*60)
	repo := NewSaleRepo(nil, loc)

	sql, args, err := repo.listQuery(nil, calendar.Monthly(time.March, 2026)).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM sales "+windowWhere+" ORDER BY id")
	assert.NotContains(t, sql, "salesman_id =")
	require.Len(t, args, 2)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, loc), args[0])
	assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, loc), args[1])
}

func TestSaleListQuery_Owner(t *testing.T) {
	owner := id.New()
	repo := NewSaleRepo(nil, nil)

	sql, args, err := repo.listQuery(&owner, calendar.Daily(calendar.NewDate(2026, time.March, 4))).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, windowWhere+" AND salesman_id = $3")
	require.Len(t, args, 3)
	// squirrel resolves driver.Valuer arguments, so the uuid arrives in text form.
	assert.Equal(t, owner.String(), args[2])
	assert.Equal(t, time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC), args[1], "upper bound is exclusive next midnight")
}

func TestServiceListQuery(t *testing.T) {
	repo := NewServiceRepo(nil, nil)

	sql, _, err := repo.listQuery(nil, calendar.Yearly(2026)).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM services WHERE ((COALESCE(service_date, created_at) >= $1")
	assert.Contains(t, sql, "OR (service_date IS NULL AND created_at IS NULL))")
	assert.Contains(t, sql, "COALESCE(device_name, '') AS device_name")
}
