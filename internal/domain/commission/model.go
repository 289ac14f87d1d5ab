// Package commission resolves the commission owed on a revenue amount under a rule.
package commission

import (
	"time"

	"ganji/internal/core/id"
	"ganji/internal/core/types"
)

// RuleType selects how a rule computes commission.
type RuleType string

const (
	TypePercentage RuleType = "percentage"
	TypeTiered     RuleType = "tiered"
	TypeFixed      RuleType = "fixed"
)

// Valid reports whether t is a known rule type.
func (t RuleType) Valid() bool {
	switch t {
	case TypePercentage, TypeTiered, TypeFixed:
		return true
	}
	return false
}

// Tier is one revenue bracket of a tiered rule: MinAmount <= amount < MaxAmount.
// An absent MaxAmount makes the tier unbounded above.
type Tier struct {
	MinAmount      types.Money         `json:"minAmount"`
	MaxAmount      types.OptionalMoney `json:"maxAmount"`
	RatePercentage types.Money         `json:"ratePercentage"`
}

// Covers reports whether amount falls in the tier.
func (t Tier) Covers(amount types.Money) bool {
	if amount.LessThan(t.MinAmount) {
		return false
	}
	return !t.MaxAmount.Valid || amount.LessThan(t.MaxAmount.Decimal)
}

// Rule is a commission policy. Only the fields relevant to Type are used.
type Rule struct {
	ID          id.ID       `db:"id" json:"id"`
	Name        string      `db:"name" json:"name"`
	Type        RuleType    `db:"rule_type" json:"type"`
	Active      bool        `db:"active" json:"active"`
	BaseRate    types.Money `db:"base_rate" json:"baseRate"`
	Tiers       []Tier      `db:"tiers" json:"tiers,omitempty"`
	FixedAmount types.Money `db:"fixed_amount" json:"fixedAmount"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updatedAt"`
}

// Resolution is a resolved commission together with the rate that produced it.
// Rate is zero for fixed rules.
type Resolution struct {
	RuleID id.ID       `json:"ruleId"`
	Amount types.Money `json:"amount"`
	Rate   types.Money `json:"rate"`
	// TierIndex is the matched tier of a tiered rule, -1 otherwise.
	TierIndex int `json:"tierIndex"`
}
