// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// ReportsHandler handles churn report requests.
type ReportsHandler struct {
	deps Dependencies
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(deps Dependencies) *ReportsHandler {
	return &ReportsHandler{deps: deps}
}

// reportRequest mirrors the OpenAPI schema for POST /reports/churn.
type reportRequest struct {
	Limit int `json:"limit"`
}

type reportResponse struct {
	Message    string `json:"message"`
	ReportPath string `json:"report_path"`
	Rows       int    `json:"rows"`
}

// HandleChurnReport handles POST /reports/churn requests.
func (h *ReportsHandler) HandleChurnReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req reportRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.Limit < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	path, rows, err := h.deps.GenerateChurnReport(r.Context(), req.Limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{
		Message:    "Churn report generated successfully",
		ReportPath: path,
		Rows:       rows,
	})
}
