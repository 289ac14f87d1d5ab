package commission

import (
	"fmt"

	"github.com/shopspring/decimal"

	"ganji/internal/core/apperror"
	"ganji/internal/core/types"
)

var maxRate = decimal.NewFromInt(100)

// Resolve returns the commission owed on amount under rule.
func Resolve(amount types.Money, rule *Rule) (types.Money, error) {
	res, err := ResolveDetailed(amount, rule)
	if err != nil {
		return types.Zero(), err
	}
	return res.Amount, nil
}

// ResolveDetailed is Resolve that also reports the applied rate and tier.
//
// Tiered rules are a single-rate lookup: the tier containing amount supplies one rate
// that applies to the whole amount. A boundary amount belongs to the upper tier.
func ResolveDetailed(amount types.Money, rule *Rule) (Resolution, error) {
	if rule == nil {
		return Resolution{}, apperror.NewNoApplicableRule("no commission rule supplied")
	}
	if !rule.Active {
		return Resolution{}, apperror.NewNoApplicableRule("commission rule is inactive").
			WithDetail("rule", rule.Name)
	}
	if amount.IsNegative() {
		return Resolution{}, apperror.NewInvalidAmount("amount", amount.String())
	}

	switch rule.Type {
	case TypeFixed:
		return Resolution{RuleID: rule.ID, Amount: rule.FixedAmount, Rate: types.Zero(), TierIndex: -1}, nil

	case TypePercentage:
		return Resolution{
			RuleID:    rule.ID,
			Amount:    types.Percent(amount, rule.BaseRate),
			Rate:      rule.BaseRate,
			TierIndex: -1,
		}, nil

	case TypeTiered:
		for i, tier := range rule.Tiers {
			if tier.Covers(amount) {
				return Resolution{
					RuleID:    rule.ID,
					Amount:    types.Percent(amount, tier.RatePercentage),
					Rate:      tier.RatePercentage,
					TierIndex: i,
				}, nil
			}
		}
		return Resolution{}, apperror.NewNoApplicableRule("no tier covers the amount").
			WithDetail("rule", rule.Name).
			WithDetail("amount", amount.String())

	default:
		return Resolution{}, apperror.NewNoApplicableRule(fmt.Sprintf("unknown rule type %q", rule.Type)).
			WithDetail("rule", rule.Name)
	}
}

// Validate checks a rule's configuration.
//
// Tiered rules must start at zero, be sorted ascending, leave no gaps or overlaps,
// and end with the only unbounded tier, so that together they cover [0, ∞).
func Validate(rule *Rule) error {
	if rule == nil {
		return apperror.NewValidation("commission rule is required")
	}
	if rule.Name == "" {
		return apperror.NewInvalidRule(rule.Name, "rule name is required")
	}

	switch rule.Type {
	case TypeFixed:
		if rule.FixedAmount.IsNegative() {
			return apperror.NewInvalidRule(rule.Name, "fixed amount must not be negative")
		}
		if !types.FitsScale(rule.FixedAmount) {
			return apperror.NewInvalidRule(rule.Name, scaleMessage("fixed amount"))
		}
	case TypePercentage:
		if !validRate(rule.BaseRate) {
			return apperror.NewInvalidRule(rule.Name, "base rate must be between 0 and 100")
		}
		if !types.FitsScale(rule.BaseRate) {
			return apperror.NewInvalidRule(rule.Name, scaleMessage("base rate"))
		}
	case TypeTiered:
		return validateTiers(rule)
	default:
		return apperror.NewInvalidRule(rule.Name, fmt.Sprintf("unknown rule type %q", rule.Type))
	}
	return nil
}

func validateTiers(rule *Rule) error {
	tiers := rule.Tiers
	if len(tiers) == 0 {
		return apperror.NewInvalidRule(rule.Name, "tiered rule needs at least one tier")
	}
	if !tiers[0].MinAmount.IsZero() {
		return apperror.NewInvalidRule(rule.Name, "first tier must start at 0")
	}

	for i, tier := range tiers {
		if !validRate(tier.RatePercentage) {
			return apperror.NewInvalidRule(rule.Name, "tier rate must be between 0 and 100").
				WithDetail("tier", i)
		}
		if !types.FitsScale(tier.RatePercentage) || !types.FitsScale(tier.MinAmount) ||
			(tier.MaxAmount.Valid && !types.FitsScale(tier.MaxAmount.Decimal)) {
			return apperror.NewInvalidRule(rule.Name, scaleMessage("tier bounds and rate")).
				WithDetail("tier", i)
		}

		last := i == len(tiers)-1
		if !tier.MaxAmount.Valid {
			if !last {
				return apperror.NewInvalidRule(rule.Name, "only the last tier may be unbounded").
					WithDetail("tier", i)
			}
			continue
		}
		if last {
			return apperror.NewInvalidRule(rule.Name, "last tier must be unbounded").
				WithDetail("tier", i)
		}
		if !tier.MaxAmount.Decimal.GreaterThan(tier.MinAmount) {
			return apperror.NewInvalidRule(rule.Name, "tier max must be greater than min").
				WithDetail("tier", i)
		}

		next := tiers[i+1].MinAmount
		switch {
		case next.LessThan(tier.MaxAmount.Decimal):
			return apperror.NewInvalidRule(rule.Name, "tiers overlap").WithDetail("tier", i+1)
		case next.GreaterThan(tier.MaxAmount.Decimal):
			return apperror.NewInvalidRule(rule.Name, "tiers leave a gap").WithDetail("tier", i+1)
		}
	}
	return nil
}

func scaleMessage(field string) string {
	return fmt.Sprintf("%s must have at most %d decimal places", field, types.MoneyScale)
}

func validRate(r types.Money) bool {
	return !r.IsNegative() && r.LessThanOrEqual(maxRate)
}
