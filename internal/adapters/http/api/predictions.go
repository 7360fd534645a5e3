// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// PredictionsHandler handles churn prediction requests.
type PredictionsHandler struct {
	deps Dependencies
}

// NewPredictionsHandler creates a new predictions handler.
func NewPredictionsHandler(deps Dependencies) *PredictionsHandler {
	return &PredictionsHandler{deps: deps}
}

// predictRequest mirrors the OpenAPI schema for POST /predictions.
type predictRequest struct {
	JobName string `json:"job_name"`
}

// HandlePredict handles POST /predictions requests.
func (h *PredictionsHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req predictRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.JobName) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingJobName)
		return
	}

	predictions, err := h.deps.PredictChurn(r.Context(), req.JobName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, predictions)
}
