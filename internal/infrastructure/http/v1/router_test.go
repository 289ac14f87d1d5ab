package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ganji/internal/config"
	"ganji/internal/core/apperror"
	appctx "ganji/internal/core/context"
	"ganji/internal/core/id"
	"ganji/internal/core/types"
	"ganji/internal/domain/aggregate"
	"ganji/internal/domain/calendar"
	"ganji/internal/domain/commission"
	"ganji/internal/domain/reports"
	"ganji/internal/domain/target"
	"ganji/internal/infrastructure/auth"
	"ganji/internal/infrastructure/http/v1/handlers"
	"ganji/pkg/logger"
)

// --- fakes ---

type fakeReports struct {
	mu        sync.Mutex
	lastQuery reports.Query
	panics    bool
}

func (f *fakeReports) Profit(_ context.Context, q reports.Query) (*reports.ProfitReport, error) {
	if f.panics {
		panic("boom")
	}
	f.mu.Lock()
	f.lastQuery = q
	f.mu.Unlock()
	return &reports.ProfitReport{Window: q.Window, Summary: aggregate.ZeroSummary()}, nil
}

func (f *fakeReports) Owners(_ context.Context, q reports.Query) (*reports.OwnerReport, error) {
	return &reports.OwnerReport{Window: q.Window, Total: aggregate.ZeroSummary()}, nil
}

func (f *fakeReports) Daily(_ context.Context, q reports.Query) (*reports.DailyReport, error) {
	return &reports.DailyReport{Window: q.Window}, nil
}

func (f *fakeReports) Commission(_ context.Context, q reports.CommissionQuery) (*reports.CommissionReport, error) {
	return &reports.CommissionReport{Window: q.Window, Total: types.Zero()}, nil
}

type fakeTargets struct {
	targets map[id.ID]*target.Target
}

func (f *fakeTargets) Create(_ context.Context, in target.CreateInput) (*target.Target, error) {
	t, err := target.NewTarget(in.OwnerID, in.Name, in.Metric, in.Period, in.TargetValue, in.BonusAmount)
	if err != nil {
		return nil, err
	}
	f.targets[t.ID] = t
	return t, nil
}

func (f *fakeTargets) Get(_ context.Context, targetID id.ID) (*target.Target, error) {
	t, ok := f.targets[targetID]
	if !ok {
		return nil, apperror.NewNotFound("target", targetID.String())
	}
	return t, nil
}

func (f *fakeTargets) List(_ context.Context, filter target.ListFilter) ([]target.Target, error) {
	var out []target.Target
	for _, t := range f.targets {
		if filter.OwnerID == nil || *filter.OwnerID == t.OwnerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTargets) EvaluateCurrent(_ context.Context, t *target.Target) (*target.Evaluation, error) {
	return &target.Evaluation{
		Target:  *t,
		Outcome: target.Outcome{Status: t.Status, Period: calendar.Monthly(time.March, 2024)},
	}, nil
}

func (f *fakeTargets) Cancel(_ context.Context, targetID id.ID) (*target.Target, error) {
	t, ok := f.targets[targetID]
	if !ok {
		return nil, apperror.NewNotFound("target", targetID.String())
	}
	if t.Status == target.StatusCompleted {
		return nil, apperror.NewTargetClosed(targetID, string(t.Status))
	}
	t.Status = target.StatusCancelled
	return t, nil
}

type fakeCommission struct{}

func (fakeCommission) ListActive(context.Context) ([]commission.Rule, error) { return nil, nil }

func (fakeCommission) Create(_ context.Context, rule *commission.Rule) error {
	rule.ID = id.New()
	return commission.Validate(rule)
}

func (fakeCommission) Resolve(_ context.Context, amount types.Money, ruleID id.ID) (commission.Resolution, error) {
	rule := &commission.Rule{ID: ruleID, Name: "flat", Type: commission.TypePercentage, Active: true, BaseRate: types.MustMoney("8")}
	return commission.ResolveDetailed(amount, rule)
}

// --- harness ---

type harness struct {
	router  *gin.Engine
	jwt     *auth.JWTService
	reports *fakeReports
	targets *fakeTargets
}

func newHarness(t *testing.T, checks map[string]handlers.Checker) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtSvc := auth.NewJWTService(config.JWTConfig{Secret: "router-test-secret-0001", Issuer: "ganji"})
	h := &harness{
		jwt:     jwtSvc,
		reports: &fakeReports{},
		targets: &fakeTargets{targets: map[id.ID]*target.Target{}},
	}
	h.router = NewRouter(RouterConfig{
		Logger:       logger.Nop(),
		JWTValidator: jwtSvc,
		Location:     time.UTC,
		Reports:      h.reports,
		Targets:      h.targets,
		Commission:   fakeCommission{},
		HealthChecks: checks,
	})
	return h
}

func (h *harness) token(t *testing.T, userID string, roles ...string) string {
	t.Helper()
	tok, _, err := h.jwt.GenerateAccessToken(appctx.UserContext{UserID: userID, Roles: roles}, time.Hour)
	require.NoError(t, err)
	return tok
}

func (h *harness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// --- tests ---

func TestHealth(t *testing.T) {
	h := newHarness(t, map[string]handlers.Checker{
		"database": handlers.CheckerFunc(func(context.Context) error { return nil }),
		"redis":    handlers.CheckerFunc(func(context.Context) error { return assert.AnError }),
	})

	w := h.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode(t, w)
	assert.Equal(t, "error", body["status"])
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "healthy", checks["database"])
}

func TestAuthRequired(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(t, http.MethodGet, "/api/v1/reports/profit", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperror.CodeUnauthorized, decode(t, w)["code"])

	w = h.do(t, http.MethodGet, "/api/v1/reports/profit", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfitReport_ManagerWindow(t *testing.T) {
	h := newHarness(t, nil)
	tok := h.token(t, "manager-1", appctx.RoleManager)

	w := h.do(t, http.MethodGet, "/api/v1/reports/profit?kind=range&from=2024-03-01&to=2024-03-15&source=sale&search=iphone", tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	q := h.reports.lastQuery
	assert.Equal(t, calendar.Range(calendar.NewDate(2024, time.March, 1), calendar.NewDate(2024, time.March, 15)), q.Window)
	assert.Nil(t, q.Filters.OwnerID)
	assert.Equal(t, "iphone", q.Filters.Search)

	body := decode(t, w)
	window := body["window"].(map[string]any)
	assert.Equal(t, "2024-03-01", window["start"])
	assert.Equal(t, "2024-03-15", window["end"])
	assert.Contains(t, body, "summary")
}

func TestProfitReport_SalespersonScopedToSelf(t *testing.T) {
	h := newHarness(t, nil)
	own := id.New()
	tok := h.token(t, own.String(), appctx.RoleSalesperson)

	w := h.do(t, http.MethodGet, "/api/v1/reports/profit?kind=yearly&year=2024", tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, h.reports.lastQuery.Filters.OwnerID)
	assert.Equal(t, own, *h.reports.lastQuery.Filters.OwnerID)

	w = h.do(t, http.MethodGet, "/api/v1/reports/profit?ownerId="+id.New().String(), tok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProfitReport_BadQuery(t *testing.T) {
	h := newHarness(t, nil)
	tok := h.token(t, "manager-1", appctx.RoleManager)

	for _, q := range []string{
		"kind=weekly",
		"kind=range&from=2024-03-10",
		"kind=range&from=2024-03-10&to=2024-03-01",
		"kind=monthly&month=13",
		"kind=daily&date=03/05/2024",
		"source=refund",
		"ownerId=nope",
	} {
		w := h.do(t, http.MethodGet, "/api/v1/reports/profit?"+q, tok, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.Equal(t, apperror.CodeValidation, decode(t, w)["code"], q)
	}
}

func TestPanicBecomesInternalError(t *testing.T) {
	h := newHarness(t, nil)
	h.reports.panics = true
	tok := h.token(t, "manager-1", appctx.RoleManager)

	w := h.do(t, http.MethodGet, "/api/v1/reports/profit", tok, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeInternal, decode(t, w)["code"])
}

func TestTargets_CreateRequiresManager(t *testing.T) {
	h := newHarness(t, nil)
	owner := id.New()
	req := map[string]any{
		"ownerId":     owner.String(),
		"name":        "March profit",
		"metric":      "profit",
		"period":      "monthly",
		"targetValue": "500000",
		"bonusAmount": "50000",
	}

	w := h.do(t, http.MethodPost, "/api/v1/targets", h.token(t, owner.String(), appctx.RoleSalesperson), req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodPost, "/api/v1/targets", h.token(t, "manager-1", appctx.RoleManager), req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "active", body["status"])
	assert.Equal(t, "500000", body["targetValue"])

	req["targetValue"] = "0"
	w = h.do(t, http.MethodPost, "/api/v1/targets", h.token(t, "manager-1", appctx.RoleManager), req)
	assert.Equal(t, apperror.CodeInvalidTargetValue, decode(t, w)["code"])
}

func TestTargets_OwnershipAndCancel(t *testing.T) {
	h := newHarness(t, nil)
	mine, err := target.NewTarget(id.New(), "mine", target.MetricProfit, target.PeriodMonthly, types.MustMoney("100"), types.OptionalMoney{})
	require.NoError(t, err)
	theirs, err := target.NewTarget(id.New(), "theirs", target.MetricProfit, target.PeriodMonthly, types.MustMoney("100"), types.OptionalMoney{})
	require.NoError(t, err)
	h.targets.targets[mine.ID] = mine
	h.targets.targets[theirs.ID] = theirs

	seller := h.token(t, mine.OwnerID.String(), appctx.RoleSalesperson)
	manager := h.token(t, "manager-1", appctx.RoleManager)

	w := h.do(t, http.MethodGet, "/api/v1/targets/"+mine.ID.String(), seller, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/targets/"+theirs.ID.String(), seller, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/targets", seller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["items"], 1)

	w = h.do(t, http.MethodPost, "/api/v1/targets/"+mine.ID.String()+"/evaluate", seller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-03", decode(t, w)["period"].(map[string]any)["label"])

	w = h.do(t, http.MethodPost, "/api/v1/targets/"+mine.ID.String()+"/cancel", seller, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	mine.Status = target.StatusCompleted
	w = h.do(t, http.MethodPost, "/api/v1/targets/"+mine.ID.String()+"/cancel", manager, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperror.CodeTargetClosed, decode(t, w)["code"])

	w = h.do(t, http.MethodPost, "/api/v1/targets/"+theirs.ID.String()+"/cancel", manager, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cancelled", decode(t, w)["status"])

	w = h.do(t, http.MethodGet, "/api/v1/targets/not-a-uuid", manager, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCommission_ResolveAndCreate(t *testing.T) {
	h := newHarness(t, nil)
	tok := h.token(t, "manager-1", appctx.RoleManager)

	w := h.do(t, http.MethodPost, "/api/v1/commission/resolve", tok, map[string]any{
		"ruleId": id.New().String(),
		"amount": "1000000",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "80000", decode(t, w)["amount"])

	w = h.do(t, http.MethodPost, "/api/v1/commission/rules", tok, map[string]any{
		"name":     "bad",
		"type":     "percentage",
		"baseRate": "150",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, apperror.CodeInvalidRule, decode(t, w)["code"])

	w = h.do(t, http.MethodGet, "/api/v1/commission/rules", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decode(t, w)["items"])
}
