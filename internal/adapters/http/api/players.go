// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// PlayersHandler handles per-player analysis and pattern requests.
type PlayersHandler struct {
	deps Dependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps Dependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

// HandlePlayer handles POST /players/{id}/analysis and
// GET /players/{id}/patterns requests.
func (h *PlayersHandler) HandlePlayer(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/players/")
	playerID, rest, ok := strings.Cut(path, "/")
	if !ok || playerID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	switch {
	case r.Method == http.MethodPost && rest == "analysis":
		h.handleAnalysis(w, r, playerID)
	case r.Method == http.MethodGet && rest == "patterns":
		h.handlePatterns(w, r, playerID)
	default:
		http.NotFound(w, r)
	}
}

func (h *PlayersHandler) handleAnalysis(w http.ResponseWriter, r *http.Request, playerID string) {
	analysis, err := h.deps.AnalyzePlayer(r.Context(), playerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (h *PlayersHandler) handlePatterns(w http.ResponseWriter, r *http.Request, playerID string) {
	patterns, err := h.deps.Patterns(r.Context(), playerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, patterns)
}
