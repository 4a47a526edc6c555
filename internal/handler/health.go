package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	store HealthChecker
	cache HealthChecker
}

// NewHealthHandler creates a new HealthHandler.
// Pass nil for cache when Redis is not configured.
func NewHealthHandler(store, cache HealthChecker) *HealthHandler {
	return &HealthHandler{
		store: store,
		cache: cache,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is a liveness probe endpoint.
// It returns 200 if the server is running, without dependency checks.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz is a readiness probe endpoint.
// Dependencies are pinged concurrently; any failure yields 503.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var (
		mu     sync.Mutex
		checks = make(map[string]string)
	)

	var g errgroup.Group
	check := func(name string, checker HealthChecker) {
		if checker == nil {
			mu.Lock()
			checks[name] = "not configured"
			mu.Unlock()
			return
		}
		g.Go(func() error {
			status := "ok"
			err := checker.Ping(ctx)
			if err != nil {
				status = "error"
			}
			mu.Lock()
			checks[name] = status
			mu.Unlock()
			return err
		})
	}

	check("store", h.store)
	check("redis", h.cache)

	status := "ok"
	statusCode := http.StatusOK
	if err := g.Wait(); err != nil {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, HealthResponse{
		Status: status,
		Checks: checks,
	})
}
