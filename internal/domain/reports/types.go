// Package reports assembles profit, breakdown and commission reports from raw
// storage records using the ledger, aggregate and commission packages.
package reports

import (
	"ganji/internal/core/id"
	"ganji/internal/core/types"
	"ganji/internal/domain/aggregate"
	"ganji/internal/domain/calendar"
	"ganji/internal/domain/commission"
	"ganji/internal/domain/ledger"
)

// Query selects the entries a report covers.
type Query struct {
	Window  calendar.Window
	Filters aggregate.Filters
	// Limit caps the number of lines returned; the summary always covers every entry.
	Limit int
}

// RejectedRecord is a raw record that could not be normalized and was left out.
type RejectedRecord struct {
	Source   ledger.SourceType `json:"source"`
	RecordID id.ID             `json:"recordId"`
	Code     string            `json:"code"`
	Reason   string            `json:"reason"`
}

// ProfitReport is a window summary with its display-ordered lines.
type ProfitReport struct {
	Window    calendar.Window   `json:"-"`
	Summary   aggregate.Summary `json:"summary"`
	Lines     []ledger.Line     `json:"lines"`
	Truncated bool              `json:"truncated"`
	Rejected  []RejectedRecord  `json:"rejected,omitempty"`
}

// OwnerReport breaks a window down per salesperson.
type OwnerReport struct {
	Window   calendar.Window          `json:"-"`
	Total    aggregate.Summary        `json:"total"`
	Owners   []aggregate.OwnerSummary `json:"owners"`
	Rejected []RejectedRecord         `json:"rejected,omitempty"`
}

// DailyReport is a per-day series over a window.
type DailyReport struct {
	Window   calendar.Window      `json:"-"`
	Points   []aggregate.DayPoint `json:"points"`
	Rejected []RejectedRecord     `json:"rejected,omitempty"`
}

// CommissionQuery selects owners and the rule applied to their revenue.
type CommissionQuery struct {
	Window  calendar.Window
	OwnerID *id.ID
	RuleID  id.ID
}

// CommissionLine is one owner's commission for the window.
type CommissionLine struct {
	OwnerID    id.ID                 `json:"ownerId"`
	Revenue    types.Money           `json:"revenue"`
	Profit     types.Money           `json:"profit"`
	Resolution commission.Resolution `json:"resolution"`
}

// CommissionReport lists commission per owner under one rule.
type CommissionReport struct {
	Window   calendar.Window  `json:"-"`
	Rule     commission.Rule  `json:"rule"`
	Lines    []CommissionLine `json:"lines"`
	Total    types.Money      `json:"total"`
	Rejected []RejectedRecord `json:"rejected,omitempty"`
}
