package commission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ganji/internal/core/apperror"
	"ganji/internal/core/id"
	"ganji/internal/core/types"
)

func m(s string) types.Money { return types.MustMoney(s) }

func bounded(min, max, rate string) Tier {
	return Tier{MinAmount: m(min), MaxAmount: types.Some(m(max)), RatePercentage: m(rate)}
}

func open(min, rate string) Tier {
	return Tier{MinAmount: m(min), RatePercentage: m(rate)}
}

func tiered(tiers ...Tier) *Rule {
	return &Rule{ID: id.New(), Name: "floor staff", Type: TypeTiered, Active: true, Tiers: tiers}
}

func TestResolve_TieredBoundaryUsesUpperTier(t *testing.T) {
	rule := tiered(bounded("0", "1000000", "5"), open("1000000", "8"))

	res, err := ResolveDetailed(m("1000000"), rule)
	require.NoError(t, err)

	assert.True(t, m("80000").Equal(res.Amount), res.Amount.String())
	assert.True(t, m("8").Equal(res.Rate))
	assert.Equal(t, 1, res.TierIndex)
}

func TestResolve_TieredAppliesRateToWholeAmount(t *testing.T) {
	rule := tiered(bounded("0", "1000000", "5"), open("1000000", "8"))

	got, err := Resolve(m("999999"), rule)
	require.NoError(t, err)
	assert.True(t, m("49999.95").Equal(got), got.String())

	got, err = Resolve(m("2000000"), rule)
	require.NoError(t, err)
	assert.True(t, m("160000").Equal(got), got.String())
}

func TestResolve_PercentageAndFixed(t *testing.T) {
	pct := &Rule{Name: "flat", Type: TypePercentage, Active: true, BaseRate: m("2.5")}
	got, err := Resolve(m("400000"), pct)
	require.NoError(t, err)
	assert.True(t, m("10000").Equal(got))

	fixed := &Rule{Name: "bonus", Type: TypeFixed, Active: true, FixedAmount: m("50000")}
	got, err = Resolve(m("0"), fixed)
	require.NoError(t, err)
	assert.True(t, m("50000").Equal(got))
}

func TestResolve_Errors(t *testing.T) {
	gapped := tiered(bounded("0", "100", "5"), open("200", "8"))
	inactive := &Rule{Name: "old", Type: TypePercentage, BaseRate: m("3")}

	tests := []struct {
		name   string
		amount string
		rule   *Rule
		code   string
	}{
		{"nil rule", "10", nil, apperror.CodeNoApplicableRule},
		{"inactive rule", "10", inactive, apperror.CodeNoApplicableRule},
		{"amount in gap", "150", gapped, apperror.CodeNoApplicableRule},
		{"negative amount", "-1", gapped, apperror.CodeInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(m(tt.amount), tt.rule)
			require.Error(t, err)
			assert.True(t, apperror.IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    *Rule
		wantErr bool
	}{
		{"contiguous tiers", tiered(bounded("0", "100", "1"), bounded("100", "500", "2"), open("500", "3")), false},
		{"single open tier", tiered(open("0", "4")), false},
		{"no tiers", tiered(), true},
		{"not starting at zero", tiered(open("10", "4")), true},
		{"gap", tiered(bounded("0", "100", "1"), open("150", "2")), true},
		{"overlap", tiered(bounded("0", "100", "1"), open("90", "2")), true},
		{"bounded last tier", tiered(bounded("0", "100", "1")), true},
		{"unbounded middle tier", tiered(open("0", "1"), open("100", "2")), true},
		{"rate above 100", tiered(open("0", "101")), true},
		{"percentage out of range", &Rule{Name: "p", Type: TypePercentage, BaseRate: m("-1")}, true},
		{"unknown type", &Rule{Name: "x", Type: "marginal"}, true},
		{"fixed", &Rule{Name: "f", Type: TypeFixed, FixedAmount: m("10")}, false},
		{"two decimal base rate", &Rule{Name: "p", Type: TypePercentage, BaseRate: m("2.25")}, false},
		{"trailing zeros fit", &Rule{Name: "p", Type: TypePercentage, BaseRate: m("2.500")}, false},
		{"three decimal base rate", &Rule{Name: "p", Type: TypePercentage, BaseRate: m("2.125")}, true},
		{"three decimal fixed amount", &Rule{Name: "f", Type: TypeFixed, FixedAmount: m("10.005")}, true},
		{"three decimal tier rate", tiered(bounded("0", "100", "1.001"), open("100", "2")), true},
		{"three decimal tier bound", tiered(bounded("0", "100.001", "1"), open("100.001", "2")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.rule)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperror.IsCode(err, apperror.CodeInvalidRule), "got %v", err)
		})
	}
}
