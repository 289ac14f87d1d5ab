package reports

import (
	"context"

	"ganji/internal/core/id"
	"ganji/internal/domain/calendar"
	"ganji/internal/domain/commission"
	"ganji/internal/domain/ledger"
)

// SaleSource lists raw sale records. A nil ownerID lists every owner.
// Implementations may return records slightly outside the window; the report
// service re-applies the exact window after normalization.
type SaleSource interface {
	ListSaleRecords(ctx context.Context, ownerID *id.ID, w calendar.Window) ([]ledger.RawSale, error)
}

// ServiceSource lists raw repair-service records. A nil ownerID lists every owner.
type ServiceSource interface {
	ListServiceRecords(ctx context.Context, ownerID *id.ID, w calendar.Window) ([]ledger.RawService, error)
}

// RuleProvider returns a commission rule by id.
type RuleProvider interface {
	Get(ctx context.Context, ruleID id.ID) (*commission.Rule, error)
}
