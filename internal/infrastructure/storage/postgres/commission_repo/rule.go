// Package commission_repo stores commission rules. Tiers live in a JSONB column.
package commission_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ganji/internal/core/apperror"
	"ganji/internal/core/id"
	"ganji/internal/domain/commission"
	"ganji/internal/infrastructure/storage/postgres"
)

const tableName = "commission_rules"

var columns = postgres.Columns[commission.Rule]()

// Compile-time check that RuleRepo implements commission.Repository.
var _ commission.Repository = (*RuleRepo)(nil)

// RuleRepo implements commission.Repository.
type RuleRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewRuleRepo creates a new commission rule repository.
func NewRuleRepo(txm *postgres.TxManager) *RuleRepo {
	return &RuleRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *RuleRepo) activeQuery() squirrel.SelectBuilder {
	return r.builder.
		Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"active": true}).
		OrderBy("name", "id")
}

// ListActive returns every active rule ordered by name.
func (r *RuleRepo) ListActive(ctx context.Context) ([]commission.Rule, error) {
	sql, args, err := r.activeQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rules []commission.Rule
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rules, sql, args...); err != nil {
		return nil, apperror.NewDatabase("list commission rules", err)
	}
	return rules, nil
}

// Get retrieves a rule by id, active or not.
func (r *RuleRepo) Get(ctx context.Context, ruleID id.ID) (*commission.Rule, error) {
	sql, args, err := r.builder.
		Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"id": ruleID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rule commission.Rule
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &rule, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("commission_rule", ruleID.String())
		}
		return nil, apperror.NewDatabase("get commission rule", err)
	}
	return &rule, nil
}

// Create inserts a rule. Timestamps are assigned by the database.
func (r *RuleRepo) Create(ctx context.Context, rule *commission.Rule) error {
	data := postgres.StructToMap(rule, "created_at", "updated_at")
	if rule.Tiers == nil {
		data["tiers"] = []commission.Tier{}
	}

	sql, args, err := r.builder.
		Insert(tableName).
		SetMap(data).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	row := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...)
	if err := row.Scan(&rule.CreatedAt, &rule.UpdatedAt); err != nil {
		return apperror.NewDatabase("insert commission rule", err)
	}
	return nil
}
