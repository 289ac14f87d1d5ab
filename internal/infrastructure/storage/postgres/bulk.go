package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"ganji/internal/core/types"
)

// ErrNoTransaction is returned by operations that must run inside RunInTransaction.
var ErrNoTransaction = errors.New("operation requires a transaction in context")

// BulkLoader inserts many rows with the COPY protocol.
type BulkLoader struct {
	txm *TxManager
}

// NewBulkLoader creates a bulk loader.
func NewBulkLoader(txm *TxManager) *BulkLoader {
	return &BulkLoader{txm: txm}
}

// Copy streams rows into table. It must run inside a transaction so a failed load
// leaves nothing behind.
func (b *BulkLoader) Copy(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	tx := b.txm.GetTx(ctx)
	if tx == nil {
		return 0, ErrNoTransaction
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("copy into %s: %w", table, err)
	}
	return n, nil
}

// Numeric converts an optional amount to the binary NUMERIC encoding used by COPY.
// An absent amount becomes NULL.
func Numeric(m types.OptionalMoney) pgtype.Numeric {
	if !m.Valid {
		return pgtype.Numeric{}
	}
	return pgtype.Numeric{Int: m.Decimal.Coefficient(), Exp: m.Decimal.Exponent(), Valid: true}
}
