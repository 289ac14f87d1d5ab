package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"ganji/internal/domain/reports"
	"ganji/internal/infrastructure/http/v1/dto"
)

// ReportService computes profit and commission reports.
type ReportService interface {
	Profit(ctx context.Context, q reports.Query) (*reports.ProfitReport, error)
	Owners(ctx context.Context, q reports.Query) (*reports.OwnerReport, error)
	Daily(ctx context.Context, q reports.Query) (*reports.DailyReport, error)
	Commission(ctx context.Context, q reports.CommissionQuery) (*reports.CommissionReport, error)
}

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service ReportService
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service ReportService) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// Profit handles GET /reports/profit.
func (h *ReportsHandler) Profit(c *gin.Context) {
	q, ok := h.query(c)
	if !ok {
		return
	}
	report, err := h.service.Profit(c.Request.Context(), q)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ProfitReportResponse{Window: dto.FromWindow(report.Window), ProfitReport: report})
}

// Owners handles GET /reports/profit/owners.
func (h *ReportsHandler) Owners(c *gin.Context) {
	q, ok := h.query(c)
	if !ok {
		return
	}
	report, err := h.service.Owners(c.Request.Context(), q)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.OwnerReportResponse{Window: dto.FromWindow(report.Window), OwnerReport: report})
}

// Daily handles GET /reports/profit/daily.
func (h *ReportsHandler) Daily(c *gin.Context) {
	q, ok := h.query(c)
	if !ok {
		return
	}
	report, err := h.service.Daily(c.Request.Context(), q)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.DailyReportResponse{Window: dto.FromWindow(report.Window), DailyReport: report})
}

// Commission handles GET /reports/commission.
func (h *ReportsHandler) Commission(c *gin.Context) {
	var req dto.CommissionReportRequest
	if !h.BindQuery(c, &req) {
		return
	}
	q, err := req.ToQuery(h.Today())
	if err != nil {
		h.Error(c, err)
		return
	}
	if q.OwnerID, err = h.ScopeOwner(c, q.OwnerID); err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.Commission(c.Request.Context(), q)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.CommissionReportResponse{Window: dto.FromWindow(report.Window), CommissionReport: report})
}

func (h *ReportsHandler) query(c *gin.Context) (reports.Query, bool) {
	var req dto.ReportRequest
	if !h.BindQuery(c, &req) {
		return reports.Query{}, false
	}
	q, err := req.ToQuery(h.Today())
	if err != nil {
		h.Error(c, err)
		return reports.Query{}, false
	}
	if q.Filters.OwnerID, err = h.ScopeOwner(c, q.Filters.OwnerID); err != nil {
		h.Error(c, err)
		return reports.Query{}, false
	}
	return q, true
}
