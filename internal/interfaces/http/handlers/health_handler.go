package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger checks the reachability of a dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides liveness and readiness endpoints.
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler creates a HealthHandler over named dependency checks.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// LivenessCheck reports that the process is running.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// ReadinessCheck pings every dependency concurrently and reports 503 when any
// of them is unreachable.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[string]string, len(h.checks))
		healthy = true
	)

	for name, pinger := range h.checks {
		wg.Add(1)
		go func(name string, p Pinger) {
			defer wg.Done()
			status := "ok"
			if err := p.Ping(ctx); err != nil {
				status = "error: " + err.Error()
			}
			mu.Lock()
			results[name] = status
			if status != "ok" {
				healthy = false
			}
			mu.Unlock()
		}(name, pinger)
	}
	wg.Wait()

	httpStatus := http.StatusOK
	status := "ready"
	if !healthy {
		httpStatus = http.StatusServiceUnavailable
		status = "not_ready"
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"checks":    results,
	})
}
