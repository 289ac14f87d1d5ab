package commission_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveQuery(t *testing.T) {
	sql, args, err := NewRuleRepo(nil).activeQuery().ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, name, rule_type, active, base_rate, tiers, fixed_amount, created_at, updated_at "+
			"FROM commission_rules WHERE active = $1 ORDER BY name, id",
		sql)
	assert.Equal(t, []any{true}, args)
}
