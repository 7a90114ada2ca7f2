package api

import (
	"net/http"

	"github.com/okian/housescore/internal/domain/types"
	"github.com/okian/housescore/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthHandler handles liveness and readiness checks.
type HealthHandler struct {
	scorer Scorer
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(scorer Scorer) *HealthHandler {
	return &HealthHandler{scorer: scorer}
}

type healthResponse struct {
	Status       string `json:"status"`
	State        string `json:"state"`
	ModelName    string `json:"model_name,omitempty"`
	ModelVersion string `json:"model_version,omitempty"`
}

func (h *HealthHandler) snapshot() healthResponse {
	resp := healthResponse{Status: "ok", State: string(h.scorer.State())}
	if info, ok := h.scorer.ModelInfo(); ok {
		resp.ModelName = info.Name
		resp.ModelVersion = info.Version
	}
	return resp
}

// HandleHealth handles GET /healthz. The process is alive whenever it answers.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.snapshot())
}

// HandleReady handles GET /readyz: 200 once the model is loaded, 503 before.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	resp := h.snapshot()
	if h.scorer.State() != types.StateReady {
		resp.Status = "unavailable"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// MetricsHandler serves the custom metrics registry.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}
