package reports

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ganji/internal/core/apperror"
	"ganji/internal/core/id"
	"ganji/internal/core/tx"
	"ganji/internal/core/types"
	"ganji/internal/domain/aggregate"
	"ganji/internal/domain/calendar"
	"ganji/internal/domain/commission"
	"ganji/internal/domain/ledger"
	"ganji/pkg/logger"
)

var tracer = otel.Tracer("ganji/reports")

const (
	defaultLineLimit = 500
	maxLineLimit     = 5000
)

// Options configures the report service.
type Options struct {
	// SkipInvalidRecords leaves records that fail normalization out of reports
	// and lists them as rejected. When false, one bad record fails the report.
	SkipInvalidRecords bool
}

// Service generates reports from raw storage records.
type Service struct {
	sales    SaleSource
	services ServiceSource
	rules    RuleProvider
	txm      tx.ReadOnlyManager
	agg      *aggregate.Aggregator
	opts     Options
}

// NewService creates a report service. All reads for one report run inside one
// read-only transaction so sales and services come from the same snapshot.
func NewService(
	sales SaleSource,
	services ServiceSource,
	rules RuleProvider,
	txm tx.ReadOnlyManager,
	agg *aggregate.Aggregator,
	opts Options,
) *Service {
	if txm == nil {
		txm = tx.Passthrough{}
	}
	if agg == nil {
		agg = aggregate.New(nil)
	}
	return &Service{
		sales:    sales,
		services: services,
		rules:    rules,
		txm:      txm,
		agg:      agg,
		opts:     opts,
	}
}

// Ledger loads and normalizes the records of one window.
func (s *Service) Ledger(ctx context.Context, ownerID *id.ID, w calendar.Window) ([]ledger.Entry, []RejectedRecord, error) {
	if err := w.Validate(); err != nil {
		return nil, nil, err
	}

	ctx, span := tracer.Start(ctx, "reports.ledger", trace.WithAttributes(
		attribute.String("window", w.String()),
	))
	defer span.End()

	var (
		sales    []ledger.RawSale
		services []ledger.RawService
	)
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		if sales, err = s.sales.ListSaleRecords(ctx, ownerID, w); err != nil {
			return fmt.Errorf("list sale records: %w", err)
		}
		if services, err = s.services.ListServiceRecords(ctx, ownerID, w); err != nil {
			return fmt.Errorf("list service records: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}

	entries, err := ledger.Compute(sales, services)
	span.SetAttributes(
		attribute.Int("records.sales", len(sales)),
		attribute.Int("records.services", len(services)),
		attribute.Int("entries", len(entries)),
	)
	if err == nil {
		return entries, nil, nil
	}

	rejected := describe(ledger.Rejections(err))
	if !s.opts.SkipInvalidRecords {
		span.RecordError(err)
		return nil, nil, strictError(err, len(rejected))
	}

	logger.Warn(ctx, "ledger records rejected", "window", w.String(), "rejected", len(rejected))
	return entries, rejected, nil
}

// Profit returns the window summary and its lines, newest first.
func (s *Service) Profit(ctx context.Context, q Query) (*ProfitReport, error) {
	entries, rejected, err := s.Ledger(ctx, q.Filters.OwnerID, q.Window)
	if err != nil {
		return nil, err
	}

	filtered := s.agg.Filter(entries, q.Window, q.Filters)
	sorted := aggregate.SortForDisplay(filtered)

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLineLimit
	}
	if limit > maxLineLimit {
		limit = maxLineLimit
	}
	truncated := len(sorted) > limit
	if truncated {
		sorted = sorted[:limit]
	}

	return &ProfitReport{
		Window:    q.Window,
		Summary:   aggregate.Reduce(filtered),
		Lines:     ledger.Annotate(sorted),
		Truncated: truncated,
		Rejected:  rejected,
	}, nil
}

// Owners returns per-owner summaries for the window.
func (s *Service) Owners(ctx context.Context, q Query) (*OwnerReport, error) {
	entries, rejected, err := s.Ledger(ctx, q.Filters.OwnerID, q.Window)
	if err != nil {
		return nil, err
	}

	return &OwnerReport{
		Window:   q.Window,
		Total:    s.agg.Aggregate(entries, q.Window, q.Filters),
		Owners:   s.agg.ByOwner(entries, q.Window, q.Filters),
		Rejected: rejected,
	}, nil
}

// Daily returns a per-day series for the window.
func (s *Service) Daily(ctx context.Context, q Query) (*DailyReport, error) {
	if q.Window.Len() > calendar.MaxSeriesDays {
		return nil, apperror.NewValidation(
			fmt.Sprintf("daily series cannot exceed %d days", calendar.MaxSeriesDays),
		).WithDetail("window", q.Window.String())
	}

	entries, rejected, err := s.Ledger(ctx, q.Filters.OwnerID, q.Window)
	if err != nil {
		return nil, err
	}

	return &DailyReport{
		Window:   q.Window,
		Points:   s.agg.Daily(entries, q.Window, q.Filters),
		Rejected: rejected,
	}, nil
}

// Commission resolves each owner's window revenue under one rule.
func (s *Service) Commission(ctx context.Context, q CommissionQuery) (*CommissionReport, error) {
	rule, err := s.rules.Get(ctx, q.RuleID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNoApplicableRule("commission rule not found").
				WithDetail("rule_id", q.RuleID.String())
		}
		return nil, fmt.Errorf("get commission rule: %w", err)
	}

	entries, rejected, err := s.Ledger(ctx, q.OwnerID, q.Window)
	if err != nil {
		return nil, err
	}

	owners := s.agg.ByOwner(entries, q.Window, aggregate.Filters{OwnerID: q.OwnerID})
	if q.OwnerID != nil && len(owners) == 0 {
		owners = []aggregate.OwnerSummary{{OwnerID: *q.OwnerID, Summary: aggregate.ZeroSummary()}}
	}

	report := &CommissionReport{
		Window:   q.Window,
		Rule:     *rule,
		Lines:    make([]CommissionLine, 0, len(owners)),
		Total:    types.Zero(),
		Rejected: rejected,
	}
	for _, o := range owners {
		res, err := commission.ResolveDetailed(o.Summary.TotalRevenue, rule)
		if err != nil {
			return nil, fmt.Errorf("resolve commission for %s: %w", o.OwnerID, err)
		}
		report.Lines = append(report.Lines, CommissionLine{
			OwnerID:    o.OwnerID,
			Revenue:    o.Summary.TotalRevenue,
			Profit:     o.Summary.TotalProfit,
			Resolution: res,
		})
		report.Total = report.Total.Add(res.Amount)
	}
	return report, nil
}

// Summarize reduces one owner's ledger over a window. It lets target evaluation
// read actuals through the same path as reports.
func (s *Service) Summarize(ctx context.Context, ownerID id.ID, w calendar.Window) (aggregate.Summary, error) {
	entries, _, err := s.Ledger(ctx, &ownerID, w)
	if err != nil {
		return aggregate.Summary{}, err
	}
	return s.agg.Aggregate(entries, w, aggregate.Filters{OwnerID: &ownerID}), nil
}

func describe(recs []*ledger.RecordError) []RejectedRecord {
	out := make([]RejectedRecord, 0, len(recs))
	for _, r := range recs {
		rr := RejectedRecord{Source: r.Source, RecordID: r.RecordID, Reason: r.Err.Error()}
		if appErr, ok := apperror.AsAppError(r.Err); ok {
			rr.Code = appErr.Code
			rr.Reason = appErr.Message
		}
		out = append(out, rr)
	}
	return out
}

// strictError surfaces the first rejected record as the report failure.
func strictError(err error, rejected int) error {
	var rec *ledger.RecordError
	if !errors.As(err, &rec) {
		return fmt.Errorf("compute ledger: %w", err)
	}
	appErr, ok := apperror.AsAppError(rec.Err)
	if !ok {
		return fmt.Errorf("compute ledger: %w", err)
	}
	return (&apperror.AppError{
		Code:       appErr.Code,
		Message:    appErr.Message,
		HTTPStatus: appErr.HTTPStatus,
		Err:        err,
	}).
		WithDetail("source", string(rec.Source)).
		WithDetail("record_id", rec.RecordID.String()).
		WithDetail("rejected", rejected)
}
