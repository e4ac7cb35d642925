package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func findEntry(entries []observer.LoggedEntry, msg string) *observer.LoggedEntry {
	for i := range entries {
		if entries[i].Message == msg {
			return &entries[i]
		}
	}
	return nil
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"success logs at info", http.StatusOK, zapcore.InfoLevel},
		{"not found logs at warn", http.StatusNotFound, zapcore.WarnLevel},
		{"server error logs at error", http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)

			router := gin.New()
			router.Use(func(c *gin.Context) {
				c.Set("request_id", "req-123")
				c.Next()
			})
			router.Use(GinMiddleware(zap.New(core)))
			router.GET("/api/v1/ledger/products/:name", func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger/products/milk?return_policy=exclude", nil)
			router.ServeHTTP(w, req)

			entry := findEntry(recorded.All(), "HTTP Request")
			require.NotNil(t, entry)
			assert.Equal(t, tt.level, entry.Level)

			fields := entry.ContextMap()
			assert.Equal(t, "req-123", fields["request_id"])
			assert.Equal(t, int64(tt.status), fields["status"])
			assert.Equal(t, "/api/v1/ledger/products/:name", fields["route"])
			assert.Equal(t, "return_policy=exclude", fields["query"])
		})
	}
}

func TestGinMiddleware_AttachesContextLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.DebugLevel)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-ctx")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/work", func(c *gin.Context) {
		assert.Equal(t, "req-ctx", GetRequestID(c.Request.Context()))
		L(c.Request.Context()).Info("inside handler")
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/work", nil))

	entry := findEntry(recorded.All(), "inside handler")
	require.NotNil(t, entry)
	assert.Equal(t, "req-ctx", entry.ContextMap()["request_id"])
	assert.Equal(t, "/work", entry.ContextMap()["path"])
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"ERR_INTERNAL"`)
	assert.Contains(t, w.Body.String(), `"success":false`)

	entry := findEntry(recorded.All(), "Panic recovered")
	require.NotNil(t, entry)
	assert.Equal(t, "boom", entry.ContextMap()["error"])
}
