package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopledger/backend/internal/infrastructure/cache"
	"github.com/shopledger/backend/internal/infrastructure/telemetry"
	"github.com/shopledger/backend/internal/interfaces/http/dto"
	"github.com/shopledger/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pingRegistrar struct{}

func (pingRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ledger/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse("pong"))
	})
	rg.GET("/ledger/panic", func(c *gin.Context) {
		panic("boom")
	})
}

func testConfig() EngineConfig {
	tracing := middleware.DefaultTracingConfig()
	tracing.Enabled = false
	return EngineConfig{
		CORS:     middleware.DefaultCORSConfig(),
		Security: middleware.DefaultSecurityConfig(),
		Tracing:  tracing,
	}
}

func serve(engine *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	assert.Equal(t, "v1", r.apiVersion)

	r = NewRouter(engine, WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	called := false
	r := NewRouter(engine).
		Use(func(c *gin.Context) { called = true; c.Next() }).
		Register(pingRegistrar{})
	group := r.Setup()

	assert.Equal(t, "/api/v1", group.BasePath())

	w := serve(engine, "/api/v1/ledger/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}

func TestNewEngine_Chain(t *testing.T) {
	cfg := testConfig()
	engine := NewEngine(cfg, func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	NewAPIRouter(engine, cfg, pingRegistrar{}).Setup()

	t.Run("health at root", func(t *testing.T) {
		w := serve(engine, HealthPath)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})

	t.Run("api route", func(t *testing.T) {
		w := serve(engine, "/api/v1/ledger/ping")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown route uses envelope", func(t *testing.T) {
		w := serve(engine, "/api/v1/nope")
		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
		assert.NotEmpty(t, resp.Error.RequestID)
	})

	t.Run("panic recovered", func(t *testing.T) {
		w := serve(engine, "/api/v1/ledger/panic")
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
	})

	t.Run("no metrics endpoint without registry", func(t *testing.T) {
		w := serve(engine, MetricsPath)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestNewEngine_MetricsAndRateLimit(t *testing.T) {
	store := cache.NewInMemoryRateLimitStore(1, time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	cfg := testConfig()
	cfg.Metrics = telemetry.NewHTTPMetrics(telemetry.PrometheusConfig{ServiceName: "shopledger"})
	cfg.RateLimit = middleware.RateLimitConfig{Store: store}

	engine := NewEngine(cfg, func(c *gin.Context) { c.Status(http.StatusOK) })
	NewAPIRouter(engine, cfg, pingRegistrar{}).Setup()

	assert.Equal(t, http.StatusOK, serve(engine, "/api/v1/ledger/ping").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(engine, "/api/v1/ledger/ping").Code)

	// probes are outside the API group and never limited
	assert.Equal(t, http.StatusOK, serve(engine, HealthPath).Code)
	assert.Equal(t, http.StatusOK, serve(engine, HealthPath).Code)

	w := serve(engine, MetricsPath)
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `shopledger_http_rate_limited_total{route="/api/v1/ledger/ping",service="shopledger"} 1`)
	assert.Contains(t, string(body), `route="/api/v1/ledger/ping"`)
}
