package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ganji/internal/core/apperror"
	"ganji/internal/core/id"
	"ganji/internal/domain/calendar"
	"ganji/internal/domain/ledger"
	"ganji/internal/infrastructure/storage/postgres"
)

var saleColumns = []string{
	"id",
	"salesman_id",
	"sale_date",
	"created_at",
	"unit_price",
	"cost_price",
	"quantity",
	"offers",
	"has_warranty",
	"COALESCE(product_name, '') AS product_name",
	"COALESCE(customer_name, '') AS customer_name",
}

// SaleRepo lists raw sale records.
type SaleRepo struct {
	base
}

// NewSaleRepo creates a sale reader. Window bounds are interpreted in loc.
func NewSaleRepo(txm *postgres.TxManager, loc *time.Location) *SaleRepo {
	return &SaleRepo{base: newBase(txm, loc)}
}

func (r *SaleRepo) listQuery(ownerID *id.ID, w calendar.Window) squirrel.SelectBuilder {
	q := r.builder.
		Select(saleColumns...).
		From("sales").
		Where(r.windowPredicate("sale_date", w)).
		OrderBy("id")
	if p := ownerPredicate(ownerID); p != nil {
		q = q.Where(p)
	}
	return q
}

// ListSaleRecords implements reports.SaleSource.
func (r *SaleRepo) ListSaleRecords(ctx context.Context, ownerID *id.ID, w calendar.Window) ([]ledger.RawSale, error) {
	sql, args, err := r.listQuery(ownerID, w).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []ledger.RawSale
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, apperror.NewDatabase("list sales", err)
	}
	return rows, nil
}
