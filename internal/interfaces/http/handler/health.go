package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopledger/backend/internal/infrastructure/resilience"
)

// StorePinger is the backing store probed by the health check
type StorePinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and store reachability
type HealthHandler struct {
	BaseHandler
	store       StorePinger
	breakers    []*resilience.Breaker
	version     string
	startTime   time.Time
	pingTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(store StorePinger, version string, breakers ...*resilience.Breaker) *HealthHandler {
	return &HealthHandler{
		store:       store,
		breakers:    breakers,
		version:     version,
		startTime:   time.Now(),
		pingTimeout: 2 * time.Second,
	}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string              `json:"status"`
	Version   string              `json:"version"`
	GoVersion string              `json:"go_version"`
	Uptime    string              `json:"uptime"`
	Store     StoreStatus         `json:"store"`
	Breakers  []resilience.Status `json:"breakers,omitempty"`
}

// StoreStatus is the result of pinging the backing store
type StoreStatus struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

const (
	healthOK          = "ok"
	healthUnavailable = "unavailable"
	healthDegraded    = "degraded"
)

// Health reports liveness, store reachability and breaker states
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    healthOK,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	status := http.StatusOK
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.pingTimeout)
		defer cancel()

		start := time.Now()
		err := h.store.Ping(ctx)
		resp.Store = StoreStatus{
			Name:    h.store.Name(),
			Status:  healthOK,
			Latency: time.Since(start).String(),
		}
		if err != nil {
			resp.Store.Status = healthUnavailable
			resp.Store.Error = "ping failed"
			resp.Status = healthUnavailable
			status = http.StatusServiceUnavailable
			_ = c.Error(err)
		}
	}

	for _, b := range h.breakers {
		st := b.Status()
		resp.Breakers = append(resp.Breakers, st)
		if st.State != "closed" && resp.Status == healthOK {
			resp.Status = healthDegraded
		}
	}

	c.JSON(status, resp)
}
