// Package config defines service configuration structures and loading hooks.
//
// Values are layered: defaults, then an optional YAML file (KAIRYX_CONFIG),
// then environment variables with the KAIRYX_ prefix. Collaborators receive
// config through constructors; nothing reads process env past Load.
package config

import "runtime"

// WarehouseConfig selects and configures the event warehouse.
type WarehouseConfig struct {
	// Driver is "memory" or "sqlite".
	Driver string `koanf:"driver"`

	// Path is the sqlite database file. Ignored by the memory driver.
	Path string `koanf:"path"`
}

// LakeConfig configures the local blob lake.
type LakeConfig struct {
	// Dir is the directory backing the lake.
	Dir string `koanf:"dir"`

	// Bucket names the lake for lake:// URIs.
	Bucket string `koanf:"bucket"`
}

// AIConfig selects and configures the generative model client.
type AIConfig struct {
	// Provider is "sim" or "gemini".
	Provider string `koanf:"provider"`

	// APIKey authenticates gemini calls. Required for the gemini provider.
	APIKey string `koanf:"api_key"`

	// Model names the gemini model.
	Model string `koanf:"model"`

	// BaseURL overrides the gemini endpoint. Intended for tests.
	BaseURL string `koanf:"base_url"`

	// TimeoutSeconds bounds each model call.
	TimeoutSeconds int `koanf:"timeout_seconds"`

	// RequestsPerMinute throttles model calls. Zero disables the throttle.
	RequestsPerMinute int `koanf:"requests_per_minute"`

	// SimSeed seeds the simulated model for reproducible replies.
	SimSeed int64 `koanf:"sim_seed"`

	// SimMalformedRate is the fraction of simulated replies emitted as
	// free text instead of JSON, between 0 and 1.
	SimMalformedRate float64 `koanf:"sim_malformed_rate"`
}

// JobsConfig configures import job tracking.
type JobsConfig struct {
	// CachePath is the JSON file persisting job records. Empty disables
	// persistence.
	CachePath string `koanf:"cache_path"`
}

// RulesConfig seeds and persists the normalization rule store.
type RulesConfig struct {
	// CachePath is the JSON file persisting operator-added rules. Empty
	// disables persistence.
	CachePath string `koanf:"cache_path"`

	// EventNames maps raw vendor event names onto the canonical taxonomy.
	EventNames map[string]string `koanf:"event_names"`

	// PropertyKeys maps raw property keys onto canonical keys.
	PropertyKeys map[string]string `koanf:"property_keys"`
}

// SourceConfig declares one ingestion connector.
type SourceConfig struct {
	// Type is "synthetic" or "export-file".
	Type string `koanf:"type"`

	// Name registers the connector; defaults to the type name.
	Name string `koanf:"name"`

	// Dir is the export directory for export-file connectors.
	Dir string `koanf:"dir"`

	// Players, Seed and PurchaseRate tune synthetic connectors.
	Players      int     `koanf:"players"`
	Seed         int64   `koanf:"seed"`
	PurchaseRate float64 `koanf:"purchase_rate"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory import notification queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of import workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the insert id deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// SessionGapMinutes is the inactivity threshold that closes a session.
	SessionGapMinutes int `koanf:"session_gap_minutes"`

	// SegmentConcurrency bounds the per-player fan-out during segmentation.
	SegmentConcurrency int `koanf:"segment_concurrency"`

	// ReportLimit caps the number of at-risk players per churn report.
	ReportLimit int `koanf:"report_limit"`

	// ReportsDir is where generated churn reports are written.
	ReportsDir string `koanf:"reports_dir"`

	// ActionHistorySize bounds the dispatched-action history.
	ActionHistorySize int `koanf:"action_history_size"`

	Warehouse WarehouseConfig `koanf:"warehouse"`
	Lake      LakeConfig      `koanf:"lake"`
	AI        AIConfig        `koanf:"ai"`
	Jobs      JobsConfig      `koanf:"jobs"`
	Rules     RulesConfig     `koanf:"rules"`

	// Sources lists the ingestion connectors to register.
	Sources []SourceConfig `koanf:"sources"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		QueueSize:          1024,
		WorkerCount:        runtime.NumCPU() * 2,
		DedupeSize:         500_000,
		SessionGapMinutes:  15,
		SegmentConcurrency: 8,
		ReportLimit:        5,
		ReportsDir:         "reports",
		ActionHistorySize:  1000,
		Warehouse: WarehouseConfig{
			Driver: "memory",
			Path:   "kairyx.db",
		},
		Lake: LakeConfig{
			Dir:    "lake",
			Bucket: "kairyx-data-lake",
		},
		AI: AIConfig{
			Provider:          "sim",
			Model:             "gemini-2.5-flash",
			TimeoutSeconds:    20,
			RequestsPerMinute: 60,
			SimSeed:           42,
		},
		Jobs: JobsConfig{
			CachePath: ".import_jobs.json",
		},
		Rules: RulesConfig{
			CachePath: ".normalization_maps.json",
		},
		Sources: []SourceConfig{
			{Type: "synthetic", Name: "synthetic"},
		},
	}
}
