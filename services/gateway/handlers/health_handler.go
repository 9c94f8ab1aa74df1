package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/RuvinSL/token-estimator/pkg/interfaces"
	"github.com/RuvinSL/token-estimator/pkg/models"
)

const healthCheckTimeout = 5 * time.Second

// HealthHandler handles health check requests
type HealthHandler struct {
	serviceName string
	version     string
	estimator   interfaces.HealthChecker
	store       *SessionStore
	startTime   time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(serviceName, version string, estimator interfaces.HealthChecker, store *SessionStore) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		estimator:   estimator,
		store:       store,
		startTime:   time.Now(),
	}
}

// Health reports the gateway status and whether the analysis service answers.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)

	status := "healthy"
	if err := h.estimator.CheckHealth(ctx); err != nil {
		checks["estimator_service"] = "unhealthy: " + err.Error()
		status = "degraded"
	} else {
		checks["estimator_service"] = "healthy"
	}
	if h.store != nil {
		checks["sessions"] = strconv.Itoa(h.store.Len())
	}

	response := models.HealthStatus{
		Status:    status,
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    formatDuration(time.Since(h.startTime)),
		Checks:    checks,
		Timestamp: time.Now(),
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	} else if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
