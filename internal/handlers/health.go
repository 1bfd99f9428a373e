package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"memories-backend/pkg/api"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db     Pinger
	logger *zap.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// Check handles GET /health requests
// @Summary Basic health check
// @Tags System
// @Produce json
// @Success 200 {object} api.HealthResponse "Application is healthy"
// @Router /health [get]
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

// Ready handles GET /ready requests for readiness checks
// @Summary Application readiness check
// @Tags System
// @Produce json
// @Success 200 {object} api.HealthResponse "Database reachable"
// @Failure 503 {object} api.HealthResponse "Database unreachable"
// @Router /ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("Readiness check failed", zap.Error(err))
		api.Success(w, http.StatusServiceUnavailable, api.HealthResponse{Status: "unavailable"})
		return
	}
	api.Success(w, http.StatusOK, api.HealthResponse{Status: "ready"})
}
