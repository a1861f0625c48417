package handlers

import (
	"context"
	"net/http"
	"time"
)

const healthCheckTimeout = 5 * time.Second

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// HealthHandler reports overall service health from named dependency checks.
type HealthHandler struct {
	checks map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// HealthResponse is the health probe payload.
type HealthResponse struct {
	Status string            `json:"status"`
	Issues map[string]string `json:"issues,omitempty"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	issues := make(map[string]string)
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			issues[name] = err.Error()
		}
	}

	resp := HealthResponse{Status: "ok"}
	status := http.StatusOK
	if len(issues) > 0 {
		resp.Status = "degraded"
		resp.Issues = issues
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
