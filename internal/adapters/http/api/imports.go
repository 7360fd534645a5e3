// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// ImportsHandler handles import job requests.
type ImportsHandler struct {
	deps Dependencies
}

// NewImportsHandler creates a new imports handler.
func NewImportsHandler(deps Dependencies) *ImportsHandler {
	return &ImportsHandler{deps: deps}
}

// importRequest mirrors the OpenAPI schema for POST /imports.
type importRequest struct {
	Source    string `json:"source"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (req importRequest) validate() error {
	switch {
	case strings.TrimSpace(req.Source) == "":
		return ErrMissingSource
	case strings.TrimSpace(req.StartDate) == "":
		return ErrMissingStartDate
	case strings.TrimSpace(req.EndDate) == "":
		return ErrMissingEndDate
	}
	return nil
}

// HandleImports handles POST /imports and GET /imports requests.
func (h *ImportsHandler) HandleImports(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleStart(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *ImportsHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	job, err := h.deps.StartImport(r.Context(), req.Source, req.StartDate, req.EndDate)
	if err != nil {
		// Source and window problems are caller mistakes.
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (h *ImportsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.ListImports(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleImportByName handles DELETE /imports/{name} and
// POST /imports/{name}/stop requests.
func (h *ImportsHandler) HandleImportByName(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/imports/")
	name, rest, _ := strings.Cut(path, "/")
	if name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	switch {
	case r.Method == http.MethodDelete && rest == "":
		if err := h.deps.DeleteImport(r.Context(), name); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Import deleted", "name": name})
	case r.Method == http.MethodPost && rest == "stop":
		if err := h.deps.StopImport(r.Context(), name); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Import stopped", "name": name})
	default:
		http.NotFound(w, r)
	}
}
