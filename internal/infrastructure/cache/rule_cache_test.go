package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ganji/internal/core/id"
	"ganji/internal/core/types"
	"ganji/internal/domain/commission"
)

func TestCodec_PreservesTiers(t *testing.T) {
	c, err := newCodec()
	require.NoError(t, err)

	rule := commission.Rule{
		ID:     id.New(),
		Name:   "floor",
		Type:   commission.TypeTiered,
		Active: true,
		Tiers: []commission.Tier{
			{MinAmount: types.MustMoney("0"), MaxAmount: types.Some(types.MustMoney("1000000")), RatePercentage: types.MustMoney("5")},
			{MinAmount: types.MustMoney("1000000"), RatePercentage: types.MustMoney("8")},
		},
	}

	data, err := c.encode([]commission.Rule{rule})
	require.NoError(t, err)

	got, err := c.decode(data)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Tiers, 2)
	assert.False(t, got[0].Tiers[1].MaxAmount.Valid, "unbounded tier stays unbounded")

	res, err := commission.Resolve(types.MustMoney("1000000"), &got[0])
	require.NoError(t, err)
	assert.True(t, types.MustMoney("80000").Equal(res))
}

func TestCodec_EmptySetIsAHit(t *testing.T) {
	c, err := newCodec()
	require.NoError(t, err)

	data, err := c.encode(nil)
	require.NoError(t, err)

	got, err := c.decode(data)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCodec_RejectsGarbage(t *testing.T) {
	c, err := newCodec()
	require.NoError(t, err)

	_, err = c.decode([]byte("not zstd"))
	assert.Error(t, err)
}
