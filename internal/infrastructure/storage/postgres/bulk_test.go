package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"ganji/internal/core/types"
)

func TestNumeric(t *testing.T) {
	n := Numeric(types.Some(types.MustMoney("1234.50")))
	assert.True(t, n.Valid)

	assert.Equal(t, int64(123450), n.Int.Int64())
	assert.Equal(t, int32(-2), n.Exp)

	assert.False(t, Numeric(types.OptionalMoney{}).Valid)
}

func TestBulkLoader_RequiresTransaction(t *testing.T) {
	b := NewBulkLoader(&TxManager{})
	_, err := b.Copy(context.Background(), "sales", []string{"id"}, nil)
	assert.ErrorIs(t, err, ErrNoTransaction)
}
