package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// SkipPaths are not traced (probes and scrapes)
	SkipPaths []string
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "shopledger",
		Enabled:     true,
		SkipPaths:   []string{"/health", "/metrics"},
	}
}

// TracingWithConfig returns the otelgin middleware. Span names follow
// "METHOD route" (e.g. "GET /api/v1/ledger/products/:name") and 5xx
// responses get an error status.
func TracingWithConfig(cfg TracingConfig, opts ...otelgin.Option) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}
	if len(skip) > 0 {
		opts = append(opts, otelgin.WithGinFilter(func(c *gin.Context) bool {
			_, skipped := skip[c.Request.URL.Path]
			return !skipped
		}))
	}

	return otelgin.Middleware(cfg.ServiceName, opts...)
}

// SpanAttributes tags the active server span with the request id and the
// ledger product being requested. Place it after TracingWithConfig.
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := GetRequestID(c); id != "" {
				span.SetAttributes(attribute.String("request_id", id))
			}
		}
		c.Next()
	}
}
