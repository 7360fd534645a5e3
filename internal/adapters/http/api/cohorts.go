// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// CohortsHandler handles cohort segmentation requests.
type CohortsHandler struct {
	deps Dependencies
}

// NewCohortsHandler creates a new cohorts handler.
func NewCohortsHandler(deps Dependencies) *CohortsHandler {
	return &CohortsHandler{deps: deps}
}

// HandleCreateCohorts handles POST /cohorts requests.
func (h *CohortsHandler) HandleCreateCohorts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	result, err := h.deps.CreateCohorts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
