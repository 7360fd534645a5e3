// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/kairyx-ai/kairyx/internal/adapters/ai"
	"github.com/kairyx-ai/kairyx/internal/adapters/lake"
	eventqueue "github.com/kairyx-ai/kairyx/internal/adapters/mq/queue"
	workerpool "github.com/kairyx-ai/kairyx/internal/adapters/mq/worker"
	"github.com/kairyx-ai/kairyx/internal/adapters/notify"
	"github.com/kairyx-ai/kairyx/internal/adapters/source"
	"github.com/kairyx-ai/kairyx/internal/adapters/warehouse"
	"github.com/kairyx-ai/kairyx/internal/config"
	"github.com/kairyx-ai/kairyx/internal/domain/cohort"
	"github.com/kairyx-ai/kairyx/internal/domain/decision"
	"github.com/kairyx-ai/kairyx/internal/domain/dedupe"
	"github.com/kairyx-ai/kairyx/internal/domain/model"
	"github.com/kairyx-ai/kairyx/internal/domain/normalize"
	"github.com/kairyx-ai/kairyx/internal/domain/profile"
	"github.com/kairyx-ai/kairyx/internal/domain/types"
	"github.com/kairyx-ai/kairyx/internal/jobs"
	"github.com/kairyx-ai/kairyx/internal/report"
	"github.com/kairyx-ai/kairyx/pkg/logger"
	"github.com/kairyx-ai/kairyx/pkg/metrics"
)

// glanceSampleSize is how many events a data glance includes.
const glanceSampleSize = 3

// secondsPerMinute converts the configured requests/minute throttle.
const secondsPerMinute = 60.0

// CohortsResult is the payload for a segmentation run, mirroring the
// cohorts endpoint response.
type CohortsResult struct {
	Message    string                     `json:"message"`
	Cohorts    map[string][]cohort.Member `json:"cohorts"`
	Unassigned int                        `json:"unassigned"`
	DataGlance []model.NormalizedEvent    `json:"data_glance"`
	EventNames []string                   `json:"event_names"`
}

// Analysis is the closed engagement loop for one player: profile, churn
// estimate, the action taken, and the simulated feedback.
type Analysis struct {
	PlayerProfile *model.PlayerProfile `json:"player_profile"`
	ChurnEstimate *model.ChurnEstimate `json:"churn_estimate"`
	ActionTaken   *model.Action        `json:"action_taken,omitempty"`
	Feedback      *model.Feedback      `json:"feedback,omitempty"`
}

// Prediction is one row of a per-job churn prediction table.
type Prediction struct {
	UserID             string          `json:"user_id"`
	LTV                float64         `json:"ltv"`
	SessionCount       int             `json:"session_count"`
	EventCount         int             `json:"event_count"`
	PredictedChurnRisk model.ChurnRisk `json:"predicted_churn_risk"`
	ChurnReason        string          `json:"churn_reason"`
	SuggestedAction    string          `json:"suggested_action"`
}

// Glance summarizes the warehouse for the data sandbox.
type Glance struct {
	Job             *jobs.Job               `json:"job,omitempty"`
	Sample          []model.NormalizedEvent `json:"sample"`
	EventTypeCounts map[string]int          `json:"event_type_counts"`
	TotalEvents     int                     `json:"total_events"`
}

// RulesSnapshot is the current normalization rule tables.
type RulesSnapshot struct {
	EventNames   map[string]string `json:"event_name_map"`
	PropertyKeys map[string]string `json:"property_key_map"`
}

// Service wires the analytics pipeline and implements the API dependencies.
type Service struct {
	mu  sync.RWMutex
	cfg *config.Config

	// Core components
	rules     *normalize.Store
	store     warehouse.Store
	blobs     *lake.Store
	deduper   dedupe.Deduper
	queue     *eventqueue.InMemoryQueue
	pool      *workerpool.Pool
	aiClient  ai.Client
	modeler   *profile.Engine
	segmenter *cohort.Segmenter
	decider   *decision.Engine
	executor  *notify.Executor
	feedback  *notify.Feedback
	tracker   *jobs.Tracker
	reporter  *report.Reporter
	sources   *source.Registry

	// Predictions cached per ready job.
	predictions map[string][]Prediction

	// Connectors injected through options, registered at Start.
	extraConnectors []source.Connector

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithAIClient overrides the configured model client. Intended for tests.
func WithAIClient(client ai.Client) Option {
	return func(s *Service) {
		if client != nil {
			s.aiClient = client
		}
	}
}

// WithWarehouse overrides the configured warehouse. Intended for tests.
func WithWarehouse(store warehouse.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithConnector registers an additional source connector at startup.
func WithConnector(c source.Connector) Option {
	return func(s *Service) {
		s.extraConnectors = append(s.extraConnectors, c)
	}
}

// New constructs a new Service from configuration.
func New(cfg *config.Config, opts ...Option) *Service {
	if cfg == nil {
		cfg = config.New()
	}
	s := &Service{
		cfg:         cfg,
		predictions: make(map[string][]Prediction),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting analytics service...")

	rules, err := s.buildRules()
	if err != nil {
		return fmt.Errorf("build rule store: %w", err)
	}
	s.rules = rules

	if s.store == nil {
		store, err := s.buildWarehouse()
		if err != nil {
			return fmt.Errorf("open warehouse: %w", err)
		}
		s.store = store
	}

	blobs, err := lake.NewStore(s.cfg.Lake.Dir, lake.WithBucket(s.cfg.Lake.Bucket))
	if err != nil {
		return fmt.Errorf("open lake: %w", err)
	}
	s.blobs = blobs

	tracker, err := jobs.NewTracker(jobs.WithCachePath(s.cfg.Jobs.CachePath))
	if err != nil {
		return fmt.Errorf("open job tracker: %w", err)
	}
	s.tracker = tracker

	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.cfg.DedupeSize),
	)
	s.queue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.cfg.QueueSize),
		eventqueue.WithBufferSize(s.cfg.QueueSize),
	)

	if s.aiClient == nil {
		client, err := s.buildAIClient()
		if err != nil {
			return fmt.Errorf("build model client: %w", err)
		}
		s.aiClient = client
	}

	s.modeler = profile.NewEngine(s.store, s.aiClient,
		profile.WithSessionGap(time.Duration(s.cfg.SessionGapMinutes)*time.Minute),
	)
	s.segmenter = cohort.NewSegmenter(s.modeler,
		cohort.WithConcurrency(s.cfg.SegmentConcurrency),
	)
	s.decider = decision.NewEngine(s.aiClient)
	s.executor = notify.NewExecutor(
		notify.WithHistorySize(s.cfg.ActionHistorySize),
	)
	s.feedback = notify.NewFeedback()
	s.reporter = report.NewReporter(s.modeler, s.decider,
		report.WithLimit(s.cfg.ReportLimit),
	)

	registry, err := s.buildSources()
	if err != nil {
		return fmt.Errorf("register sources: %w", err)
	}
	s.sources = registry

	s.pool = workerpool.NewPool(s.cfg.WorkerCount, s.queue, s.blobs, s.rules, s.deduper, s.store, s.tracker)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "analytics service started",
		logger.Int("workers", s.cfg.WorkerCount),
		logger.Int("queueSize", s.cfg.QueueSize),
		logger.String("warehouse", s.cfg.Warehouse.Driver),
		logger.String("aiProvider", s.aiClient.Model()),
		logger.Any("sources", s.sources.Names()),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping analytics service...")

	// Shutdown closes the queue first so workers drain what remains.
	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
		}
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "warehouse close failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "analytics service stopped")
}

func (s *Service) buildRules() (*normalize.Store, error) {
	seed := normalize.DefaultRules()
	for k, v := range s.cfg.Rules.EventNames {
		seed.EventNames[k] = v
	}
	for k, v := range s.cfg.Rules.PropertyKeys {
		seed.PropertyKeys[k] = v
	}
	return normalize.NewStore(
		normalize.WithRules(seed),
		normalize.WithCachePath(s.cfg.Rules.CachePath),
	)
}

func (s *Service) buildWarehouse() (warehouse.Store, error) {
	switch s.cfg.Warehouse.Driver {
	case "sqlite":
		return warehouse.NewSQLiteStore(s.cfg.Warehouse.Path)
	default:
		return warehouse.NewMemoryStore(), nil
	}
}

func (s *Service) buildAIClient() (ai.Client, error) {
	var client ai.Client
	switch s.cfg.AI.Provider {
	case "gemini":
		gemini, err := ai.NewGeminiClient(s.cfg.AI.APIKey,
			ai.WithGeminiModel(s.cfg.AI.Model),
			ai.WithGeminiBaseURL(s.cfg.AI.BaseURL),
			ai.WithGeminiTimeout(time.Duration(s.cfg.AI.TimeoutSeconds)*time.Second),
		)
		if err != nil {
			return nil, err
		}
		client = gemini
	default:
		client = ai.NewSimClient(
			ai.WithSimSeed(s.cfg.AI.SimSeed),
			ai.WithSimMalformedRate(s.cfg.AI.SimMalformedRate),
		)
	}

	if rpm := s.cfg.AI.RequestsPerMinute; rpm > 0 {
		client = ai.NewThrottled(client, float64(rpm)/secondsPerMinute, 2)
	}
	return client, nil
}

func (s *Service) buildSources() (*source.Registry, error) {
	registry := source.NewRegistry()
	for _, src := range s.cfg.Sources {
		switch src.Type {
		case "synthetic":
			opts := []source.SyntheticOption{}
			if src.Name != "" {
				opts = append(opts, source.WithSyntheticName(src.Name))
			}
			if src.Players > 0 {
				opts = append(opts, source.WithSyntheticPlayers(src.Players))
			}
			if src.Seed != 0 {
				opts = append(opts, source.WithSyntheticSeed(src.Seed))
			}
			if src.PurchaseRate > 0 {
				opts = append(opts, source.WithSyntheticPurchaseRate(src.PurchaseRate))
			}
			registry.Add(source.NewSynthetic(opts...))
		case "export-file":
			opts := []source.ExportFileOption{}
			if src.Name != "" {
				opts = append(opts, source.WithExportFileName(src.Name))
			}
			connector, err := source.NewExportFile(src.Dir, opts...)
			if err != nil {
				return nil, err
			}
			registry.Add(connector)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownSourceType, src.Type)
		}
	}
	for _, c := range s.extraConnectors {
		registry.Add(c)
	}
	return registry, nil
}

// StartImport validates the request, records a job, and runs the
// connector-to-lake leg asynchronously; a worker completes the rest.
func (s *Service) StartImport(ctx context.Context, sourceName, startDate, endDate string) (jobs.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return jobs.Job{}, ErrNotStarted
	}

	connector, err := s.sources.Get(sourceName)
	if err != nil {
		return jobs.Job{}, err
	}
	start, end, err := source.ParseWindow(startDate, endDate)
	if err != nil {
		return jobs.Job{}, err
	}

	job, err := s.tracker.Create(ctx, sourceName, startDate, endDate)
	if err != nil {
		return jobs.Job{}, err
	}

	go s.runIngest(job, connector, start, end)
	return job, nil
}

// runIngest exports, uploads, and notifies a worker. Any failure along the
// way marks the job failed; a stop request observed at completion wins.
func (s *Service) runIngest(job jobs.Job, connector source.Connector, start, end time.Time) {
	ctx := context.Background()
	ingestStart := time.Now()

	events, err := connector.Export(ctx, start, end)
	if err != nil {
		s.failJob(ctx, job.Name, fmt.Sprintf("export failed: %v", err))
		return
	}
	if len(events) == 0 {
		s.failJob(ctx, job.Name, "no events found in the requested window")
		return
	}

	uri, err := s.blobs.Upload(ctx, job.Name, events)
	if err != nil {
		s.failJob(ctx, job.Name, fmt.Sprintf("lake upload failed: %v", err))
		return
	}

	ok := s.queue.Enqueue(ctx, eventqueue.Notification{
		JobID:      job.Name,
		LakeURI:    uri,
		EventCount: len(events),
	})
	if !ok {
		s.failJob(ctx, job.Name, "import queue is full")
		return
	}

	metrics.RecordImportJobDuration(float64(time.Since(ingestStart).Milliseconds()))
	s.logger.Info(ctx, "import batch staged",
		logger.String("job", job.Name),
		logger.String("lake_uri", uri),
		logger.Int("events", len(events)),
	)
}

func (s *Service) failJob(ctx context.Context, name, reason string) {
	if err := s.tracker.MarkFailed(ctx, name, reason); err != nil {
		s.logger.Warn(ctx, "could not mark job failed",
			logger.String("job", name),
			logger.Error(err))
	}
}

// ListImports returns all import jobs, newest first.
func (s *Service) ListImports(ctx context.Context) ([]jobs.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.tracker.List(ctx), nil
}

// StopImport interrupts a processing job.
func (s *Service) StopImport(ctx context.Context, name string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return s.tracker.Stop(ctx, name)
}

// DeleteImport removes a job record along with its lake blobs, warehouse
// rows, and cached predictions.
func (s *Service) DeleteImport(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return ErrNotStarted
	}

	if err := s.tracker.Delete(ctx, name); err != nil {
		return err
	}
	if _, err := s.blobs.DeleteJob(ctx, name); err != nil {
		s.logger.Warn(ctx, "lake cleanup failed", logger.String("job", name), logger.Error(err))
	}
	if _, err := s.store.DeleteJob(ctx, name); err != nil {
		s.logger.Warn(ctx, "warehouse cleanup failed", logger.String("job", name), logger.Error(err))
	}
	delete(s.predictions, name)

	s.logger.Info(ctx, "import deleted", logger.String("job", name))
	return nil
}

// CreateCohorts runs a segmentation pass and packages it with a data glance.
func (s *Service) CreateCohorts(ctx context.Context) (*CohortsResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}

	result, err := s.segmenter.Segment(ctx)
	if err != nil {
		return nil, err
	}

	sample, err := s.store.Sample(ctx, glanceSampleSize)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.EventTypeCounts(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	return &CohortsResult{
		Message:    "Cohorts created successfully",
		Cohorts:    result.Cohorts,
		Unassigned: result.Unassigned,
		DataGlance: sample,
		EventNames: names,
	}, nil
}

// AnalyzePlayer runs the full engagement loop for one player: profile,
// churn estimate, decision, dispatch, and simulated feedback.
func (s *Service) AnalyzePlayer(ctx context.Context, playerID string) (*Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}

	prof, err := s.modeler.BuildProfile(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if prof == nil {
		return nil, ErrPlayerNotFound
	}

	estimate, err := s.modeler.EstimateChurnRisk(ctx, playerID, prof)
	if err != nil {
		return nil, err
	}

	action, err := s.decider.DecideNextAction(ctx, prof, estimate, decision.ObjectiveReduceChurn)
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{
		PlayerProfile: prof,
		ChurnEstimate: estimate,
		ActionTaken:   action,
	}

	actionID, err := s.executor.Execute(ctx, action)
	if err != nil {
		return nil, err
	}
	if actionID != "" {
		action.ID = actionID
		fb := s.feedback.Result(ctx, playerID, actionID)
		analysis.Feedback = &fb
	}

	return analysis, nil
}

// Patterns returns the player's event-type frequency, most frequent first.
func (s *Service) Patterns(ctx context.Context, playerID string) ([]types.Pattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}

	patterns, err := s.modeler.EngagementPatterns(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if patterns == nil {
		return nil, ErrPlayerNotFound
	}
	return patterns, nil
}

// PredictChurn builds (or serves from cache) the per-player prediction
// table for a ready import job.
func (s *Service) PredictChurn(ctx context.Context, jobName string) ([]Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil, ErrNotStarted
	}

	job, err := s.tracker.Get(ctx, jobName)
	if err != nil {
		return nil, err
	}
	if job.Status != jobs.StatusReady {
		return nil, jobs.ErrJobNotReady
	}

	if cached, ok := s.predictions[jobName]; ok {
		return cached, nil
	}

	playerIDs, err := s.modeler.ListPlayerIDs(ctx)
	if err != nil {
		return nil, err
	}

	predictions := make([]Prediction, 0, len(playerIDs))
	for _, playerID := range playerIDs {
		prof, err := s.modeler.BuildProfile(ctx, playerID)
		if err != nil || prof == nil {
			continue
		}
		estimate, err := s.modeler.EstimateChurnRisk(ctx, playerID, prof)
		if err != nil || estimate == nil {
			continue
		}

		suggested := "N/A"
		action, err := s.decider.DecideNextAction(ctx, prof, estimate, decision.ObjectiveReduceChurn)
		if err == nil && action != nil && action.Content != "" {
			suggested = action.Content
		}

		predictions = append(predictions, Prediction{
			UserID:             playerID,
			LTV:                prof.TotalRevenue,
			SessionCount:       prof.TotalSessions,
			EventCount:         prof.TotalEvents,
			PredictedChurnRisk: estimate.Risk,
			ChurnReason:        estimate.Reason,
			SuggestedAction:    suggested,
		})
	}

	s.predictions[jobName] = predictions
	return predictions, nil
}

// GenerateChurnReport writes a churn CSV under the configured reports
// directory and returns its path.
func (s *Service) GenerateChurnReport(ctx context.Context, limit int) (string, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return "", 0, ErrNotStarted
	}

	playerIDs, err := s.modeler.ListPlayerIDs(ctx)
	if err != nil {
		return "", 0, err
	}

	reporter := s.reporter
	if limit > 0 {
		reporter = report.NewReporter(s.modeler, s.decider, report.WithLimit(limit))
	}

	if err := os.MkdirAll(s.cfg.ReportsDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create reports dir: %w", err)
	}
	path := filepath.Join(s.cfg.ReportsDir, fmt.Sprintf("churn_report_%s.csv", time.Now().UTC().Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	n, err := reporter.Generate(ctx, playerIDs, f)
	if err != nil {
		return "", 0, err
	}
	return path, n, nil
}

// ActionHistory returns dispatched engagement actions, newest first.
func (s *Service) ActionHistory(ctx context.Context) ([]model.Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.executor.History(ctx), nil
}

// SandboxGlance summarizes the warehouse and the latest ready job.
func (s *Service) SandboxGlance(ctx context.Context) (*Glance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}

	glance := &Glance{}
	if job, err := s.tracker.LatestReady(ctx); err == nil {
		glance.Job = &job
	}

	sample, err := s.store.Sample(ctx, glanceSampleSize)
	if err != nil {
		return nil, err
	}
	glance.Sample = sample

	counts, err := s.store.EventTypeCounts(ctx)
	if err != nil {
		return nil, err
	}
	glance.EventTypeCounts = counts

	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	glance.TotalEvents = total

	return glance, nil
}

// AddEventRule registers a normalization rewrite for a raw event name.
func (s *Service) AddEventRule(ctx context.Context, rawName, normalizedName string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return s.rules.AddEventRule(rawName, normalizedName)
}

// AddPropertyRule registers a normalization rewrite for a raw property key.
func (s *Service) AddPropertyRule(ctx context.Context, rawKey, normalizedKey string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return s.rules.AddPropertyRule(rawKey, normalizedKey)
}

// Rules returns the active normalization rule tables.
func (s *Service) Rules(ctx context.Context) (RulesSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return RulesSnapshot{}, ErrNotStarted
	}
	rules := s.rules.Rules()
	return RulesSnapshot{
		EventNames:   rules.EventNames,
		PropertyKeys: rules.PropertyKeys,
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.cfg.WorkerCount,
		"queueSize":   s.cfg.QueueSize,
		"warehouse":   s.cfg.Warehouse.Driver,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["aiProvider"] = s.aiClient.Model()
		stats["sources"] = s.sources.Names()
		stats["jobs"] = len(s.tracker.List(ctx))

		if total, err := s.store.Count(ctx); err == nil {
			stats["totalEvents"] = total
			metrics.UpdateWarehouseEvents(total)
		}
		if players, err := s.store.PlayerIDs(ctx); err == nil {
			stats["totalPlayers"] = len(players)
			metrics.UpdateWarehousePlayers(len(players))
		}

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.cfg.WorkerCount)
	}

	return stats
}
