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

var serviceColumns = []string{
	"id",
	"salesman_id",
	"service_date",
	"created_at",
	"issue_price",
	"service_price",
	"final_price",
	"offers",
	"COALESCE(device_name, '') AS device_name",
	"COALESCE(customer_name, '') AS customer_name",
}

// ServiceRepo lists raw repair-service records.
type ServiceRepo struct {
	base
}

// NewServiceRepo creates a service-record reader. Window bounds are interpreted in loc.
func NewServiceRepo(txm *postgres.TxManager, loc *time.Location) *ServiceRepo {
	return &ServiceRepo{base: newBase(txm, loc)}
}

func (r *ServiceRepo) listQuery(ownerID *id.ID, w calendar.Window) squirrel.SelectBuilder {
	q := r.builder.
		Select(serviceColumns...).
		From("services").
		Where(r.windowPredicate("service_date", w)).
		OrderBy("id")
	if p := ownerPredicate(ownerID); p != nil {
		q = q.Where(p)
	}
	return q
}

// ListServiceRecords implements reports.ServiceSource.
func (r *ServiceRepo) ListServiceRecords(ctx context.Context, ownerID *id.ID, w calendar.Window) ([]ledger.RawService, error) {
	sql, args, err := r.listQuery(ownerID, w).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []ledger.RawService
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, apperror.NewDatabase("list services", err)
	}
	return rows, nil
}
