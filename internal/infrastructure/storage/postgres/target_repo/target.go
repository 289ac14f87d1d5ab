// Package target_repo stores targets and performs their compare-and-set status updates.
package target_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ganji/internal/core/apperror"
	"ganji/internal/core/id"
	"ganji/internal/domain/target"
	"ganji/internal/infrastructure/storage/postgres"
)

const tableName = "targets"

var columns = postgres.Columns[target.Target]()

// Compile-time check that TargetRepo implements target.Repository.
var _ target.Repository = (*TargetRepo)(nil)

// TargetRepo implements target.Repository.
type TargetRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewTargetRepo creates a new target repository.
func NewTargetRepo(txm *postgres.TxManager) *TargetRepo {
	return &TargetRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a target.
func (r *TargetRepo) Create(ctx context.Context, t *target.Target) error {
	sql, args, err := r.builder.
		Insert(tableName).
		SetMap(postgres.StructToMap(t)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase("insert target", err)
	}
	return nil
}

// Get retrieves a target by id.
func (r *TargetRepo) Get(ctx context.Context, targetID id.ID) (*target.Target, error) {
	sql, args, err := r.builder.
		Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"id": targetID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t target.Target
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("target", targetID.String())
		}
		return nil, apperror.NewDatabase("get target", err)
	}
	return &t, nil
}

func (r *TargetRepo) listQuery(f target.ListFilter) squirrel.SelectBuilder {
	q := r.builder.
		Select(columns...).
		From(tableName).
		OrderBy("created_at DESC", "id DESC")

	if f.OwnerID != nil {
		q = q.Where(squirrel.Eq{"owner_id": *f.OwnerID})
	}
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": f.Status})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return q
}

// List returns targets matching the filter. A zero limit returns every match.
func (r *TargetRepo) List(ctx context.Context, f target.ListFilter) ([]target.Target, error) {
	sql, args, err := r.listQuery(f).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []target.Target
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, apperror.NewDatabase("list targets", err)
	}
	return out, nil
}

func (r *TargetRepo) updateStatusQuery(targetID id.ID, from, to target.Status) squirrel.UpdateBuilder {
	return r.builder.
		Update(tableName).
		Set("status", to).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": targetID}).
		Where(squirrel.Eq{"status": from})
}

// UpdateStatus is a single compare-and-set; it reports whether this call won.
func (r *TargetRepo) UpdateStatus(ctx context.Context, targetID id.ID, from, to target.Status) (bool, error) {
	sql, args, err := r.updateStatusQuery(targetID, from, to).ToSql()
	if err != nil {
		return false, fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, apperror.NewDatabase("update target status", err)
	}
	return tag.RowsAffected() == 1, nil
}
