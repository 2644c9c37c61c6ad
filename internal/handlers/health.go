package handlers

import (
	"context"
	"net/http"
	"time"

	"adaptivebeta/internal/kvstore"
)

const (
	apiName    = "Adaptive Beta API"
	apiVersion = "1.0.0"

	readyTimeout = 2 * time.Second
)

// HealthHandler serves the root, liveness and readiness endpoints.
type HealthHandler struct {
	store kvstore.Store
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(deps *Dependencies) *HealthHandler {
	return &HealthHandler{store: deps.Store}
}

// Root identifies the API.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": apiName,
		"version": apiVersion,
	})
}

// Health always reports healthy while the process is serving.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready reports whether the key-value store answers.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"store":  "not configured",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"store":  err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"store":  "ok",
	})
}
