// Package target evaluates salesperson targets against aggregated actuals and
// drives their one-directional lifecycle.
package target

import (
	"fmt"
	"strings"
	"time"

	"ganji/internal/core/apperror"
	"ganji/internal/core/id"
	"ganji/internal/core/types"
	"ganji/internal/domain/calendar"
)

// Metric is what a target measures.
type Metric string

const (
	MetricProfit    Metric = "profit"
	MetricItemsSold Metric = "items_sold"
)

// Period is the calendar period a target is measured over.
type Period string

const (
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// Status is the lifecycle state of a target.
// Active is the only non-terminal state.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusActive || s.IsTerminal()
}

// Target is a performance goal for one owner.
type Target struct {
	ID          id.ID               `db:"id" json:"id"`
	OwnerID     id.ID               `db:"owner_id" json:"ownerId"`
	Name        string              `db:"name" json:"name"`
	Metric      Metric              `db:"metric" json:"metric"`
	Period      Period              `db:"period" json:"period"`
	TargetValue types.Money         `db:"target_value" json:"targetValue"`
	BonusAmount types.OptionalMoney `db:"bonus_amount" json:"bonusAmount"`
	Status      Status              `db:"status" json:"status"`
	CreatedAt   time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time           `db:"updated_at" json:"updatedAt"`
}

// NewTarget builds an Active target, rejecting a non-positive target value and amounts
// finer than MoneyScale.
func NewTarget(ownerID id.ID, name string, metric Metric, period Period, value types.Money, bonus types.OptionalMoney) (*Target, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.NewValidation("target name is required")
	}
	if id.IsNil(ownerID) {
		return nil, apperror.NewValidation("target owner is required")
	}
	if metric != MetricProfit && metric != MetricItemsSold {
		return nil, apperror.NewValidation(fmt.Sprintf("unknown target metric %q", metric))
	}
	if period != PeriodMonthly && period != PeriodYearly {
		return nil, apperror.NewValidation(fmt.Sprintf("unknown target period %q", period))
	}
	if !value.IsPositive() || !types.FitsScale(value) {
		return nil, apperror.NewInvalidTargetValue(value.String())
	}
	if bonus.Valid && (bonus.Decimal.IsNegative() || !types.FitsScale(bonus.Decimal)) {
		return nil, apperror.NewInvalidAmount("bonus_amount", bonus.Decimal.String())
	}

	now := time.Now().UTC()
	return &Target{
		ID:          id.New(),
		OwnerID:     ownerID,
		Name:        name,
		Metric:      metric,
		Period:      period,
		TargetValue: value,
		BonusAmount: bonus,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// PeriodWindow returns the calendar period of kind p that contains today.
func PeriodWindow(p Period, today calendar.Date) calendar.Window {
	if p == PeriodYearly {
		return calendar.YearOf(today)
	}
	return calendar.MonthOf(today)
}

// ListFilter narrows target listings.
type ListFilter struct {
	OwnerID *id.ID
	Status  Status
	Limit   int
	Offset  int
}
