// Package handlers implements the HTTP endpoints of API v1.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ganji/internal/core/apperror"
	appctx "ganji/internal/core/context"
	"ganji/internal/core/id"
	"ganji/internal/domain/calendar"
	"ganji/internal/infrastructure/http/v1/dto"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct {
	loc *time.Location
	now func() time.Time
}

// NewBaseHandler creates a base handler resolving "today" in loc.
func NewBaseHandler(loc *time.Location) *BaseHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &BaseHandler{loc: loc, now: time.Now}
}

// WithClock replaces the clock. Intended for tests.
func (h *BaseHandler) WithClock(now func() time.Time) *BaseHandler {
	h.now = now
	return h
}

// Today returns the shop-local date used for default windows.
func (h *BaseHandler) Today() calendar.Date {
	return calendar.DateIn(h.now(), h.loc)
}

// BindJSON binds the request body, reporting a validation error on failure.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds query parameters, reporting a validation error on failure.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// PathID parses the :id path parameter.
func (h *BaseHandler) PathID(c *gin.Context) (id.ID, bool) {
	v, err := dto.ParseID("id", c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return id.Nil(), false
	}
	return v, true
}

// Error registers err and aborts. The response is written by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// OK sends 200 with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created sends 201 with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// ScopeOwner returns the owner a request may see. Managers see whatever they ask
// for; everyone else is pinned to their own id and may not ask for another.
func (h *BaseHandler) ScopeOwner(c *gin.Context, requested *id.ID) (*id.ID, error) {
	ctx := c.Request.Context()
	user := appctx.GetUser(ctx)
	if user == nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}
	if appctx.HasRole(ctx, appctx.RoleManager) {
		return requested, nil
	}

	own, err := id.Parse(user.UserID)
	if err != nil {
		return nil, apperror.NewForbidden("token subject is not a salesperson")
	}
	if requested != nil && *requested != own {
		return nil, apperror.NewForbidden("salespeople may only read their own records").
			WithDetail("owner_id", requested.String())
	}
	return &own, nil
}
