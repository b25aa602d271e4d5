package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	reportHandler "campuscafe-reports/internal/handlers/report"
	"campuscafe-reports/internal/middleware"
	"campuscafe-reports/internal/pkg/jwt"
	"campuscafe-reports/internal/pkg/ratelimit"
	"campuscafe-reports/internal/repository/postgres"
	reportUsecase "campuscafe-reports/internal/service/report"
	"campuscafe-reports/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type denyAll struct{}

func (denyAll) Verify(string) (*jwt.Claims, error) {
	return nil, errors.New("no tokens accepted")
}

type exhausted struct{}

func (exhausted) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{Allowed: false, Limit: 1, ResetIn: time.Second}, nil
}

func newEngine(gw *testutil.FakeGateway, mutate func(h *Handlers)) *gin.Engine {
	svc := reportUsecase.NewReportService(postgres.NewReportRepository(gw), zap.NewNop())
	h := &Handlers{ReportHandler: reportHandler.NewReportHandler(svc, zap.NewNop())}
	if mutate != nil {
		mutate(h)
	}

	r := gin.New()
	SetupRouter(r, zap.NewNop(), h)
	return r
}

func do(r *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestRouter_Health(t *testing.T) {
	r := newEngine(testutil.NewFakeGateway(), func(h *Handlers) {
		h.Ping = func(context.Context) error { return nil }
	})
	w := do(r, "/api/v1/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	r = newEngine(testutil.NewFakeGateway(), func(h *Handlers) {
		h.Ping = func(context.Context) error { return errors.New("dial tcp: connection refused") }
	})
	w = do(r, "/api/v1/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "dial tcp")
}

func TestRouter_RoutesReports(t *testing.T) {
	gw := testutil.NewFakeGateway().
		On("FROM vw_sales_channel").
		On("FROM vw_payment_mix").
		On("FROM vw_inventory_risk")
	r := newEngine(gw, nil)

	for _, target := range []string{
		"/api/v1/reports/channels",
		"/api/v1/reports/payments",
		"/api/v1/reports/inventory",
	} {
		assert.Equal(t, http.StatusOK, do(r, target).Code, target)
	}

	w := do(r, "/api/v1/reports/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestRouter_AuthGuardsReportsNotHealth(t *testing.T) {
	r := newEngine(testutil.NewFakeGateway(), func(h *Handlers) {
		h.AuthMiddleware = middleware.NewAuthMiddleware(denyAll{}, zap.NewNop())
	})

	assert.Equal(t, http.StatusOK, do(r, "/api/v1/health").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/api/v1/reports/channels").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/api/reports/sales?from=2024-05-01&to=2024-05-31").Code)
}

func TestRouter_RateLimitedBeforeQuery(t *testing.T) {
	gw := testutil.NewFakeGateway().On("FROM vw_sales_channel")
	r := newEngine(gw, func(h *Handlers) {
		h.RateLimiter = exhausted{}
	})

	assert.Equal(t, http.StatusTooManyRequests, do(r, "/api/v1/reports/channels").Code)
	assert.Empty(t, gw.Calls())
}

type fixedClaims struct {
	roles []string
}

func (f fixedClaims) Verify(string) (*jwt.Claims, error) {
	c := &jwt.Claims{Roles: f.roles}
	c.Subject = "dashboard"
	return c, nil
}

func TestRouter_RequiresReportsRole(t *testing.T) {
	gw := testutil.NewFakeGateway().On("FROM vw_sales_channel")

	for _, tt := range []struct {
		roles []string
		want  int
	}{
		{[]string{ReportsReadRole}, http.StatusOK},
		{[]string{"kitchen"}, http.StatusForbidden},
	} {
		r := newEngine(gw, func(h *Handlers) {
			h.AuthMiddleware = middleware.NewAuthMiddleware(fixedClaims{roles: tt.roles}, zap.NewNop())
		})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/channels", nil)
		req.Header.Set("Authorization", "Bearer t")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tt.want, w.Code, tt.roles)
	}
}
