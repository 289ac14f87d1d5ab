package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ganji/internal/core/apperror"
	"ganji/internal/core/id"
	"ganji/internal/core/types"
	"ganji/internal/domain/aggregate"
	"ganji/internal/domain/calendar"
	"ganji/internal/domain/commission"
	"ganji/internal/domain/ledger"
)

type fakeStore struct {
	sales    []ledger.RawSale
	services []ledger.RawService
	err      error
	rules    map[id.ID]*commission.Rule
}

func (f *fakeStore) ListSaleRecords(_ context.Context, ownerID *id.ID, _ calendar.Window) ([]ledger.RawSale, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []ledger.RawSale
	for _, s := range f.sales {
		if ownerID == nil || (s.SalesmanID != nil && *s.SalesmanID == *ownerID) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ListServiceRecords(_ context.Context, ownerID *id.ID, _ calendar.Window) ([]ledger.RawService, error) {
	var out []ledger.RawService
	for _, s := range f.services {
		if ownerID == nil || (s.SalesmanID != nil && *s.SalesmanID == *ownerID) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) Get(_ context.Context, ruleID id.ID) (*commission.Rule, error) {
	r, ok := f.rules[ruleID]
	if !ok {
		return nil, apperror.NewNotFound("commission_rule", ruleID)
	}
	return r, nil
}

func at(d int) *time.Time {
	t := time.Date(2026, time.March, d, 10, 0, 0, 0, time.UTC)
	return &t
}

func money(s string) types.OptionalMoney { return types.Some(types.MustMoney(s)) }

func newService(store *fakeStore, opts Options) *Service {
	return NewService(store, store, store, nil, aggregate.New(nil), opts)
}

var march = calendar.Monthly(time.March, 2026)

func TestProfit_MixedSources(t *testing.T) {
	owner := id.New()
	store := &fakeStore{
		sales: []ledger.RawSale{{
			ID: id.New(), SalesmanID: &owner, SaleDate: at(2),
			UnitPrice: money("3500000"), CostPrice: money("3200000"), Offers: money("0"),
		}},
		services: []ledger.RawService{{
			ID: id.New(), SalesmanID: &owner, ServiceDate: at(5),
			IssuePrice: money("50000"), ServicePrice: money("30000"),
			FinalPrice: money("150000"), Offers: money("10000"),
		}},
	}

	report, err := newService(store, Options{}).Profit(context.Background(), Query{Window: march})
	require.NoError(t, err)

	assert.True(t, types.MustMoney("360000").Equal(report.Summary.TotalProfit))
	assert.Equal(t, 2, report.Summary.EntryCount)
	require.Len(t, report.Lines, 2)
	assert.Equal(t, ledger.SourceService, report.Lines[0].SourceType, "newest first")
	assert.True(t, types.MustMoney("60000").Equal(report.Lines[0].Profit))
	assert.False(t, report.Truncated)
}

func TestProfit_LimitKeepsFullSummary(t *testing.T) {
	store := &fakeStore{}
	for d := 1; d <= 3; d++ {
		store.sales = append(store.sales, ledger.RawSale{ID: id.New(), SaleDate: at(d), UnitPrice: money("10")})
	}

	report, err := newService(store, Options{}).Profit(context.Background(), Query{Window: march, Limit: 2})
	require.NoError(t, err)

	assert.Len(t, report.Lines, 2)
	assert.True(t, report.Truncated)
	assert.Equal(t, 3, report.Summary.EntryCount)
}

func TestLedger_StrictPolicyFailsOnBadRecord(t *testing.T) {
	bad := ledger.RawSale{ID: id.New(), UnitPrice: money("10")}
	store := &fakeStore{sales: []ledger.RawSale{
		{ID: id.New(), SaleDate: at(1), UnitPrice: money("10")},
		bad,
	}}

	_, err := newService(store, Options{}).Profit(context.Background(), Query{Window: march})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeMissingRequiredField, appErr.Code)
	assert.Equal(t, bad.ID.String(), appErr.Details["record_id"])
}

func TestLedger_SkipPolicyListsRejected(t *testing.T) {
	bad := ledger.RawSale{ID: id.New(), SaleDate: at(1), UnitPrice: money("-10")}
	store := &fakeStore{sales: []ledger.RawSale{
		{ID: id.New(), SaleDate: at(1), UnitPrice: money("10")},
		bad,
	}}

	report, err := newService(store, Options{SkipInvalidRecords: true}).Profit(context.Background(), Query{Window: march})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Summary.EntryCount)
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, bad.ID, report.Rejected[0].RecordID)
	assert.Equal(t, apperror.CodeInvalidAmount, report.Rejected[0].Code)
}

func TestLedger_StorageErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := newService(&fakeStore{err: boom}, Options{}).Profit(context.Background(), Query{Window: march})
	assert.ErrorIs(t, err, boom)
}

func TestLedger_InvalidWindow(t *testing.T) {
	w := calendar.Range(calendar.NewDate(2026, time.March, 9), calendar.NewDate(2026, time.March, 1))
	_, err := newService(&fakeStore{}, Options{}).Profit(context.Background(), Query{Window: w})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestDaily_RejectsLongWindows(t *testing.T) {
	w := calendar.Range(calendar.NewDate(2024, time.January, 1), calendar.NewDate(2026, time.January, 1))
	_, err := newService(&fakeStore{}, Options{}).Daily(context.Background(), Query{Window: w})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestCommission_PerOwner(t *testing.T) {
	alice, bob := id.New(), id.New()
	rule := &commission.Rule{
		ID:     id.New(),
		Name:   "floor",
		Type:   commission.TypeTiered,
		Active: true,
		Tiers: []commission.Tier{
			{MinAmount: types.MustMoney("0"), MaxAmount: money("1000000"), RatePercentage: types.MustMoney("5")},
			{MinAmount: types.MustMoney("1000000"), RatePercentage: types.MustMoney("8")},
		},
	}
	store := &fakeStore{
		sales: []ledger.RawSale{
			{ID: id.New(), SalesmanID: &alice, SaleDate: at(1), UnitPrice: money("1000000")},
			{ID: id.New(), SalesmanID: &bob, SaleDate: at(2), UnitPrice: money("200000")},
		},
		rules: map[id.ID]*commission.Rule{rule.ID: rule},
	}
	svc := newService(store, Options{})

	report, err := svc.Commission(context.Background(), CommissionQuery{Window: march, RuleID: rule.ID})
	require.NoError(t, err)
	require.Len(t, report.Lines, 2)

	byOwner := map[id.ID]CommissionLine{}
	for _, l := range report.Lines {
		byOwner[l.OwnerID] = l
	}
	assert.True(t, types.MustMoney("80000").Equal(byOwner[alice].Resolution.Amount))
	assert.True(t, types.MustMoney("10000").Equal(byOwner[bob].Resolution.Amount))
	assert.True(t, types.MustMoney("90000").Equal(report.Total))

	_, err = svc.Commission(context.Background(), CommissionQuery{Window: march, RuleID: id.New()})
	assert.True(t, apperror.IsCode(err, apperror.CodeNoApplicableRule))
}

func TestSummarize_OwnerOnly(t *testing.T) {
	alice, bob := id.New(), id.New()
	store := &fakeStore{sales: []ledger.RawSale{
		{ID: id.New(), SalesmanID: &alice, SaleDate: at(1), UnitPrice: money("100"), CostPrice: money("40")},
		{ID: id.New(), SalesmanID: &bob, SaleDate: at(1), UnitPrice: money("999")},
	}}

	s, err := newService(store, Options{}).Summarize(context.Background(), alice, march)
	require.NoError(t, err)
	assert.True(t, types.MustMoney("60").Equal(s.TotalProfit))
	assert.Equal(t, int64(1), s.ItemCount)
}
