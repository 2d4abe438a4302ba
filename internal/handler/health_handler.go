package handler

import (
	"net/http"

	"vidtube/internal/container"
)

// HealthHandler reports the liveness of the service and its backing stores
type HealthHandler struct {
	container *container.Container
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(container *container.Container) *HealthHandler {
	return &HealthHandler{
		container: container,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()

	checks := map[string]string{
		"database": "ok",
		"cache":    "disabled",
	}
	status := http.StatusOK

	if err := h.container.DB.Health(r.Context()); err != nil {
		log.WithError(err).Error("Database health check failed")
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}

	if h.container.HasRedis() {
		checks["cache"] = "ok"
		if err := h.container.GetRedisClient().Health(r.Context()); err != nil {
			log.WithError(err).Warn("Redis health check failed")
			checks["cache"] = "unavailable"
		}
	}

	if status == http.StatusOK {
		respondJSON(w, status, checks, "Service healthy")
		return
	}
	respondJSON(w, status, checks, "Service degraded")
}
