package dto

import (
	"ganji/internal/core/types"
	"ganji/internal/domain/commission"
)

// ResolveCommissionRequest is the body of POST /commission/resolve.
type ResolveCommissionRequest struct {
	RuleID string      `json:"ruleId" binding:"required"`
	Amount types.Money `json:"amount"`
}

// CreateRuleRequest is the body of POST /commission/rules.
type CreateRuleRequest struct {
	Name        string            `json:"name" binding:"required,max=200"`
	Type        string            `json:"type" binding:"required,oneof=percentage tiered fixed"`
	Active      *bool             `json:"active"`
	BaseRate    types.Money       `json:"baseRate"`
	Tiers       []commission.Tier `json:"tiers"`
	FixedAmount types.Money       `json:"fixedAmount"`
}

// ToRule converts the request into an unsaved rule. Rules are active unless the
// request says otherwise.
func (r CreateRuleRequest) ToRule() *commission.Rule {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return &commission.Rule{
		Name:        r.Name,
		Type:        commission.RuleType(r.Type),
		Active:      active,
		BaseRate:    r.BaseRate,
		Tiers:       r.Tiers,
		FixedAmount: r.FixedAmount,
	}
}

// RulesResponse is the body of GET /commission/rules.
type RulesResponse struct {
	Items []commission.Rule `json:"items"`
}
