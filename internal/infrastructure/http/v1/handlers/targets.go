package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"ganji/internal/core/apperror"
	"ganji/internal/core/id"
	"ganji/internal/domain/target"
	"ganji/internal/infrastructure/http/v1/dto"
)

// TargetService manages targets and their evaluation.
type TargetService interface {
	Create(ctx context.Context, in target.CreateInput) (*target.Target, error)
	Get(ctx context.Context, targetID id.ID) (*target.Target, error)
	List(ctx context.Context, filter target.ListFilter) ([]target.Target, error)
	EvaluateCurrent(ctx context.Context, t *target.Target) (*target.Evaluation, error)
	Cancel(ctx context.Context, targetID id.ID) (*target.Target, error)
}

// TargetsHandler handles HTTP requests for targets.
type TargetsHandler struct {
	*BaseHandler
	service TargetService
}

// NewTargetsHandler creates a new targets handler.
func NewTargetsHandler(base *BaseHandler, service TargetService) *TargetsHandler {
	return &TargetsHandler{BaseHandler: base, service: service}
}

// List handles GET /targets.
func (h *TargetsHandler) List(c *gin.Context) {
	var req dto.ListTargetsRequest
	if !h.BindQuery(c, &req) {
		return
	}
	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	if filter.OwnerID, err = h.ScopeOwner(c, filter.OwnerID); err != nil {
		h.Error(c, err)
		return
	}

	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	if items == nil {
		items = []target.Target{}
	}
	h.OK(c, dto.ListResponse[target.Target]{Items: items, Limit: filter.Limit, Offset: filter.Offset})
}

// Create handles POST /targets.
func (h *TargetsHandler) Create(c *gin.Context) {
	var req dto.CreateTargetRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	t, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, t)
}

// Get handles GET /targets/:id.
func (h *TargetsHandler) Get(c *gin.Context) {
	t, ok := h.load(c)
	if !ok {
		return
	}
	h.OK(c, t)
}

// Evaluate handles POST /targets/:id/evaluate.
func (h *TargetsHandler) Evaluate(c *gin.Context) {
	t, ok := h.load(c)
	if !ok {
		return
	}

	ev, err := h.service.EvaluateCurrent(c.Request.Context(), t)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.EvaluationResponse{Evaluation: ev, Period: dto.FromWindow(ev.Outcome.Period)})
}

// Cancel handles POST /targets/:id/cancel.
func (h *TargetsHandler) Cancel(c *gin.Context) {
	targetID, ok := h.PathID(c)
	if !ok {
		return
	}
	t, err := h.service.Cancel(c.Request.Context(), targetID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, t)
}

// load fetches the :id target and checks the caller may see it. Targets of other
// salespeople are reported as missing.
func (h *TargetsHandler) load(c *gin.Context) (*target.Target, bool) {
	targetID, ok := h.PathID(c)
	if !ok {
		return nil, false
	}
	t, err := h.service.Get(c.Request.Context(), targetID)
	if err != nil {
		h.Error(c, err)
		return nil, false
	}

	scoped, err := h.ScopeOwner(c, nil)
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	if scoped != nil && *scoped != t.OwnerID {
		h.Error(c, apperror.NewNotFound("target", targetID.String()))
		return nil, false
	}
	return t, true
}
