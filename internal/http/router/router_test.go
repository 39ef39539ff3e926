package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apphttp "filmdecks_backend/internal/http"
	"filmdecks_backend/platform/config"
	"filmdecks_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type echoModule struct{}

func (echoModule) Name() string { return "echo" }

func (echoModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Public.GET("/echo", func(c *gin.Context) { c.String(http.StatusOK, "public") })
	ctx.Admin.GET("/echo", func(c *gin.Context) { c.String(http.StatusOK, "admin") })
}

func newApp(health apphttp.HealthChecker) *apphttp.App {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "filmdecks_test_total", Help: "test"}))
	return &apphttp.App{
		Config: &config.Config{
			JWTAccessSecret:     "secret",
			CORSOrigins:         []string{"https://filmdecks.biz"},
			IntakeRatePerMinute: 60,
			IntakeRateBurst:     5,
		},
		Logger:  logger.New("development"),
		Health:  health,
		Metrics: reg,
		Modules: []apphttp.Module{echoModule{}},
	}
}

func get(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	if rec := get(New(newApp(pinger{})), "/api/health"); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health %d %s", rec.Code, rec.Body.String())
	}
	if rec := get(New(newApp(pinger{err: errors.New("db down")})), "/api/health"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when the database is down, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(New(newApp(nil)), "/metrics")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "filmdecks_test_total") {
		t.Fatalf("metrics not exposed: %d", rec.Code)
	}
}

func TestModuleGroups(t *testing.T) {
	engine := New(newApp(nil))

	if rec := get(engine, "/api/v1/echo"); rec.Code != http.StatusOK || rec.Body.String() != "public" {
		t.Fatalf("public route: %d %s", rec.Code, rec.Body.String())
	}
	if rec := get(engine, "/api/v1/admin/echo"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("admin route must require auth, got %d", rec.Code)
	}
}
