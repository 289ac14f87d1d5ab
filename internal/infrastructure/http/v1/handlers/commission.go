package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"ganji/internal/core/id"
	"ganji/internal/core/types"
	"ganji/internal/domain/commission"
	"ganji/internal/infrastructure/http/v1/dto"
)

// CommissionService reads, stores and resolves commission rules.
type CommissionService interface {
	ListActive(ctx context.Context) ([]commission.Rule, error)
	Create(ctx context.Context, rule *commission.Rule) error
	Resolve(ctx context.Context, amount types.Money, ruleID id.ID) (commission.Resolution, error)
}

// CommissionHandler handles HTTP requests for commission rules.
type CommissionHandler struct {
	*BaseHandler
	service CommissionService
}

// NewCommissionHandler creates a new commission handler.
func NewCommissionHandler(base *BaseHandler, service CommissionService) *CommissionHandler {
	return &CommissionHandler{BaseHandler: base, service: service}
}

// Rules handles GET /commission/rules.
func (h *CommissionHandler) Rules(c *gin.Context) {
	rules, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	if rules == nil {
		rules = []commission.Rule{}
	}
	h.OK(c, dto.RulesResponse{Items: rules})
}

// CreateRule handles POST /commission/rules.
func (h *CommissionHandler) CreateRule(c *gin.Context) {
	var req dto.CreateRuleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	rule := req.ToRule()
	if err := h.service.Create(c.Request.Context(), rule); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, rule)
}

// Resolve handles POST /commission/resolve.
func (h *CommissionHandler) Resolve(c *gin.Context) {
	var req dto.ResolveCommissionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ruleID, err := dto.ParseID("ruleId", req.RuleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	res, err := h.service.Resolve(c.Request.Context(), req.Amount, ruleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, res)
}
