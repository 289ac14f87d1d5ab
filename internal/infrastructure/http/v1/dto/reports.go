package dto

import (
	"fmt"

	"ganji/internal/core/apperror"
	"ganji/internal/domain/aggregate"
	"ganji/internal/domain/calendar"
	"ganji/internal/domain/ledger"
	"ganji/internal/domain/reports"
)

// ReportRequest is the query string shared by the profit report endpoints.
type ReportRequest struct {
	WindowRequest
	OwnerID string `form:"ownerId"`
	Search  string `form:"search"`
	Source  string `form:"source"`
	Limit   int    `form:"limit"`
}

// ToQuery converts the request into a report query.
func (r ReportRequest) ToQuery(today calendar.Date) (reports.Query, error) {
	w, err := r.ToWindow(today)
	if err != nil {
		return reports.Query{}, err
	}
	ownerID, err := ParseOptionalID("ownerId", r.OwnerID)
	if err != nil {
		return reports.Query{}, err
	}

	source := ledger.SourceType(r.Source)
	if source != "" && !source.Valid() {
		return reports.Query{}, apperror.NewValidation(fmt.Sprintf("unknown source %q", r.Source))
	}
	if r.Limit < 0 {
		return reports.Query{}, apperror.NewValidation("limit must not be negative")
	}

	return reports.Query{
		Window: w,
		Filters: aggregate.Filters{
			OwnerID: ownerID,
			Search:  r.Search,
			Source:  source,
		},
		Limit: r.Limit,
	}, nil
}

// ProfitReportResponse is the body of GET /reports/profit.
type ProfitReportResponse struct {
	Window WindowResponse `json:"window"`
	*reports.ProfitReport
}

// OwnerReportResponse is the body of GET /reports/profit/owners.
type OwnerReportResponse struct {
	Window WindowResponse `json:"window"`
	*reports.OwnerReport
}

// DailyReportResponse is the body of GET /reports/profit/daily.
type DailyReportResponse struct {
	Window WindowResponse `json:"window"`
	*reports.DailyReport
}

// CommissionReportRequest is the query string of GET /reports/commission.
type CommissionReportRequest struct {
	WindowRequest
	OwnerID string `form:"ownerId"`
	RuleID  string `form:"ruleId" binding:"required"`
}

// ToQuery converts the request into a commission query.
func (r CommissionReportRequest) ToQuery(today calendar.Date) (reports.CommissionQuery, error) {
	w, err := r.ToWindow(today)
	if err != nil {
		return reports.CommissionQuery{}, err
	}
	ownerID, err := ParseOptionalID("ownerId", r.OwnerID)
	if err != nil {
		return reports.CommissionQuery{}, err
	}
	ruleID, err := ParseID("ruleId", r.RuleID)
	if err != nil {
		return reports.CommissionQuery{}, err
	}
	return reports.CommissionQuery{Window: w, OwnerID: ownerID, RuleID: ruleID}, nil
}

// CommissionReportResponse is the body of GET /reports/commission.
type CommissionReportResponse struct {
	Window WindowResponse `json:"window"`
	*reports.CommissionReport
}
