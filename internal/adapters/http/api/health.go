package api

import (
	"context"
	"net/http"
)

// Pinger reports backend liveness.
type Pinger interface {
	Health(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	pinger Pinger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(pinger Pinger) *HealthHandler {
	return &HealthHandler{pinger: pinger}
}

type healthResponse struct {
	Status string `json:"status"`
}

// HandleHealth handles GET /healthz requests. It answers 503 when the store
// does not respond.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if err := h.pinger.Health(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, CodeUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
