// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	service "github.com/kairyx-ai/kairyx/internal/app"
	"github.com/kairyx-ai/kairyx/internal/domain/model"
	"github.com/kairyx-ai/kairyx/internal/domain/types"
	"github.com/kairyx-ai/kairyx/internal/jobs"
	"github.com/kairyx-ai/kairyx/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StartImport(ctx context.Context, source, startDate, endDate string) (jobs.Job, error)
	ListImports(ctx context.Context) ([]jobs.Job, error)
	StopImport(ctx context.Context, name string) error
	DeleteImport(ctx context.Context, name string) error

	CreateCohorts(ctx context.Context) (*service.CohortsResult, error)
	AnalyzePlayer(ctx context.Context, playerID string) (*service.Analysis, error)
	Patterns(ctx context.Context, playerID string) ([]types.Pattern, error)
	PredictChurn(ctx context.Context, jobName string) ([]service.Prediction, error)
	GenerateChurnReport(ctx context.Context, limit int) (string, int, error)
	ActionHistory(ctx context.Context) ([]model.Action, error)

	SandboxGlance(ctx context.Context) (*service.Glance, error)
	AddEventRule(ctx context.Context, rawName, normalizedName string) error
	Rules(ctx context.Context) (service.RulesSnapshot, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	importsHandler     *ImportsHandler
	cohortsHandler     *CohortsHandler
	playersHandler     *PlayersHandler
	predictionsHandler *PredictionsHandler
	reportsHandler     *ReportsHandler
	actionsHandler     *ActionsHandler
	sandboxHandler     *SandboxHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		importsHandler:     NewImportsHandler(deps),
		cohortsHandler:     NewCohortsHandler(deps),
		playersHandler:     NewPlayersHandler(deps),
		predictionsHandler: NewPredictionsHandler(deps),
		reportsHandler:     NewReportsHandler(deps),
		actionsHandler:     NewActionsHandler(deps),
		sandboxHandler:     NewSandboxHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/imports", MetricsMiddleware(s.importsHandler.HandleImports, "imports"))
	mux.HandleFunc("/imports/", MetricsMiddleware(s.importsHandler.HandleImportByName, "imports"))
	mux.HandleFunc("/cohorts", MetricsMiddleware(s.cohortsHandler.HandleCreateCohorts, "cohorts"))
	mux.HandleFunc("/players/", MetricsMiddleware(s.playersHandler.HandlePlayer, "players"))
	mux.HandleFunc("/predictions", MetricsMiddleware(s.predictionsHandler.HandlePredict, "predictions"))
	mux.HandleFunc("/reports/churn", MetricsMiddleware(s.reportsHandler.HandleChurnReport, "reports"))
	mux.HandleFunc("/actions", MetricsMiddleware(s.actionsHandler.HandleList, "actions"))
	mux.HandleFunc("/sandbox/glance", MetricsMiddleware(s.sandboxHandler.HandleGlance, "sandbox_glance"))
	mux.HandleFunc("/sandbox/rules", MetricsMiddleware(s.sandboxHandler.HandleRules, "sandbox_rules"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates known sentinels to the right status code.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrPlayerNotFound),
		errors.Is(err, jobs.ErrJobNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, jobs.ErrJobNotReady),
		errors.Is(err, jobs.ErrJobNotProcessing):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	case errors.Is(err, ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// decodeBody decodes a JSON request body into v. An empty body is allowed
// when allowEmpty is set; malformed JSON is a bad request either way.
func decodeBody(r *http.Request, v any, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return nil
	}
	if allowEmpty && errors.Is(err, io.EOF) {
		return nil
	}
	return ErrBadRequest
}
