// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// ActionsHandler handles dispatched-action history requests.
type ActionsHandler struct {
	deps Dependencies
}

// NewActionsHandler creates a new actions handler.
func NewActionsHandler(deps Dependencies) *ActionsHandler {
	return &ActionsHandler{deps: deps}
}

// HandleList handles GET /actions requests.
func (h *ActionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	history, err := h.deps.ActionHistory(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}
