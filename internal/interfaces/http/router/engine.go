package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopledger/backend/internal/infrastructure/logger"
	"github.com/shopledger/backend/internal/infrastructure/telemetry"
	"github.com/shopledger/backend/internal/interfaces/http/dto"
	"github.com/shopledger/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

const (
	// HealthPath is the liveness and store probe
	HealthPath = "/health"
	// MetricsPath is the Prometheus scrape endpoint
	MetricsPath = "/metrics"
)

// EngineConfig collects what the middleware chain needs
type EngineConfig struct {
	Logger         *zap.Logger
	TrustedProxies []string
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	Tracing        middleware.TracingConfig
	// Metrics enables the Prometheus middleware and /metrics when set
	Metrics *telemetry.HTTPMetrics
	// RateLimit is applied to the API group only; a nil Store disables it
	RateLimit middleware.RateLimitConfig
}

// NewEngine builds a gin engine with the middleware chain in order:
// request id, recovery, access log, security headers, CORS, tracing and
// metrics. Probes are mounted at the root.
func NewEngine(cfg EngineConfig, health gin.HandlerFunc) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.SecureWithConfig(cfg.Security))
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	engine.Use(middleware.TracingWithConfig(cfg.Tracing))
	engine.Use(middleware.SpanAttributes())
	if cfg.Metrics != nil {
		engine.Use(middleware.Metrics(cfg.Metrics, MetricsPath))
		engine.GET(MetricsPath, middleware.MetricsHandler(cfg.Metrics))
	}

	if health != nil {
		engine.GET(HealthPath, health)
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	return engine
}

// NewAPIRouter wraps engine with the versioned API router, rate limited
// when cfg.RateLimit has a store.
func NewAPIRouter(engine *gin.Engine, cfg EngineConfig, registrars ...RouteRegistrar) *Router {
	r := NewRouter(engine, WithAPIVersion("v1"))
	if cfg.RateLimit.Store != nil {
		rl := cfg.RateLimit
		if rl.Logger == nil {
			rl.Logger = cfg.Logger
		}
		if rl.OnLimited == nil && cfg.Metrics != nil {
			metrics := cfg.Metrics
			rl.OnLimited = func(c *gin.Context) {
				route := c.FullPath()
				if route == "" {
					route = "unmatched"
				}
				metrics.RecordRateLimited(route)
			}
		}
		r.Use(middleware.RateLimit(rl))
	}
	for _, reg := range registrars {
		r.Register(reg)
	}
	return r
}
