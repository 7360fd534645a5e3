// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// SandboxHandler handles data-sandbox requests: warehouse glances and
// normalization rule management.
type SandboxHandler struct {
	deps Dependencies
}

// NewSandboxHandler creates a new sandbox handler.
func NewSandboxHandler(deps Dependencies) *SandboxHandler {
	return &SandboxHandler{deps: deps}
}

// HandleGlance handles GET /sandbox/glance requests.
func (h *SandboxHandler) HandleGlance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	glance, err := h.deps.SandboxGlance(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, glance)
}

// ruleRequest mirrors the OpenAPI schema for POST /sandbox/rules.
type ruleRequest struct {
	RawName        string `json:"raw_name"`
	NormalizedName string `json:"normalized_name"`
}

func (req ruleRequest) validate() error {
	switch {
	case strings.TrimSpace(req.RawName) == "":
		return ErrMissingRawName
	case strings.TrimSpace(req.NormalizedName) == "":
		return ErrMissingNormalizedName
	}
	return nil
}

// HandleRules handles GET /sandbox/rules and POST /sandbox/rules requests.
func (h *SandboxHandler) HandleRules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		snapshot, err := h.deps.Rules(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snapshot)
	case http.MethodPost:
		var req ruleRequest
		if err := decodeBody(r, &req, false); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		if err := h.deps.AddEventRule(r.Context(), req.RawName, req.NormalizedName); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Rule added", "raw_name": req.RawName})
	default:
		http.NotFound(w, r)
	}
}
