package target

import (
	"github.com/shopspring/decimal"

	"ganji/internal/core/types"
	"ganji/internal/domain/aggregate"
	"ganji/internal/domain/calendar"
)

// Outcome is the result of evaluating a target against one period's summary.
type Outcome struct {
	Status        Status          `json:"status"`
	Actual        decimal.Decimal `json:"actual"`
	ProgressRatio decimal.Decimal `json:"progressRatio"`
	BonusPayable  types.Money     `json:"bonusPayable"`
	Period        calendar.Window `json:"-"`
	PeriodElapsed bool            `json:"periodElapsed"`
}

// Changed reports whether the outcome moves t to a different status.
func (o Outcome) Changed(t Target) bool {
	return o.Status != t.Status
}

// Actual picks the summary figure a target measures.
func Actual(m Metric, s aggregate.Summary) decimal.Decimal {
	if m == MetricItemsSold {
		return decimal.NewFromInt(s.ItemCount)
	}
	return s.TotalProfit
}

// Evaluate computes progress and the status t should have for the given period.
//
// It is pure: the caller supplies the period and today's shop-local date. A terminal
// target keeps its status whatever the actuals say. An open period with the goal met
// completes the target and makes the bonus payable; an elapsed period with the goal
// missed fails it; every other case leaves it active. Progress is not clamped.
func Evaluate(t Target, summary aggregate.Summary, period calendar.Window, today calendar.Date) Outcome {
	actual := Actual(t.Metric, summary)

	ratio := decimal.Zero
	if t.TargetValue.IsPositive() {
		ratio = actual.Div(t.TargetValue)
	}

	out := Outcome{
		Status:        t.Status,
		Actual:        actual,
		ProgressRatio: ratio,
		BonusPayable:  types.Zero(),
		Period:        period,
		PeriodElapsed: period.Elapsed(today),
	}

	if t.Status.IsTerminal() {
		if t.Status == StatusCompleted {
			out.BonusPayable = types.OrZero(t.BonusAmount)
		}
		return out
	}

	met := actual.GreaterThanOrEqual(t.TargetValue)
	switch {
	case !out.PeriodElapsed && met:
		out.Status = StatusCompleted
		out.BonusPayable = types.OrZero(t.BonusAmount)
	case out.PeriodElapsed && !met:
		out.Status = StatusFailed
	}
	return out
}
