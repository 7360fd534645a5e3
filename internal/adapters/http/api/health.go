// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"time"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{startedAt: time.Now().UTC()}
}

type healthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Service string `json:"service"`
}

// HandleHealth handles GET /healthz requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Uptime:  time.Since(h.startedAt).Truncate(time.Second).String(),
		Service: "kairyx",
	})
}
