package config_test

import (
	"errors"
	"os"
	"runtime"
	"testing"

	"github.com/kairyx-ai/kairyx/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 500_000)
				convey.So(cfg.AI.Provider, convey.ShouldEqual, "sim")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("KAIRYX_ADDR", ":8080")
			_ = os.Setenv("KAIRYX_QUEUE_SIZE", "4096")
			_ = os.Setenv("KAIRYX_WORKER_COUNT", "16")
			_ = os.Setenv("KAIRYX_DEDUPE_SIZE", "250000")
			_ = os.Setenv("KAIRYX_SESSION_GAP_MINUTES", "30")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 4096)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 250000)
				convey.So(cfg.SessionGapMinutes, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When loading config with nested environment variables", func() {
			_ = os.Setenv("KAIRYX_WAREHOUSE__DRIVER", "sqlite")
			_ = os.Setenv("KAIRYX_WAREHOUSE__PATH", "test.db")
			_ = os.Setenv("KAIRYX_AI__REQUESTS_PER_MINUTE", "30")
			_ = os.Setenv("KAIRYX_LAKE__BUCKET", "test-lake")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then nested sections receive the values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Warehouse.Driver, convey.ShouldEqual, "sqlite")
				convey.So(cfg.Warehouse.Path, convey.ShouldEqual, "test.db")
				convey.So(cfg.AI.RequestsPerMinute, convey.ShouldEqual, 30)
				convey.So(cfg.Lake.Bucket, convey.ShouldEqual, "test-lake")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
queue_size: 2048
worker_count: 24
session_gap_minutes: 20
warehouse:
  driver: sqlite
  path: yaml.db
ai:
  provider: sim
  sim_seed: 7
sources:
  - type: synthetic
    name: demo
    players: 10
  - type: export-file
    name: vendor-drop
    dir: /tmp/exports
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("KAIRYX_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 2048)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 24)
				convey.So(cfg.SessionGapMinutes, convey.ShouldEqual, 20)
				convey.So(cfg.Warehouse.Driver, convey.ShouldEqual, "sqlite")
				convey.So(cfg.Warehouse.Path, convey.ShouldEqual, "yaml.db")
				convey.So(cfg.AI.SimSeed, convey.ShouldEqual, 7)
				convey.So(cfg.Sources, convey.ShouldHaveLength, 2)
				convey.So(cfg.Sources[1].Name, convey.ShouldEqual, "vendor-drop")
				convey.So(cfg.Sources[1].Dir, convey.ShouldEqual, "/tmp/exports")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
queue_size: 2048
worker_count: 24
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("KAIRYX_CONFIG", tmpFile)
			_ = os.Setenv("KAIRYX_ADDR", ":8080")
			_ = os.Setenv("KAIRYX_WORKER_COUNT", "32")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")   // Overridden by env
				convey.So(cfg.QueueSize, convey.ShouldEqual, 2048) // From file
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32) // Overridden by env
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			invalidYaml := `invalid: yaml: content: [`
			tmpFile := createTempConfigFile(invalidYaml)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("KAIRYX_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("KAIRYX_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("KAIRYX_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-positive queue size", func() {
			_ = os.Setenv("KAIRYX_QUEUE_SIZE", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown warehouse driver", func() {
			_ = os.Setenv("KAIRYX_WAREHOUSE__DRIVER", "bigquery")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When selecting the gemini provider without an api key", func() {
			_ = os.Setenv("KAIRYX_AI__PROVIDER", "gemini")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When an export-file source lacks a directory", func() {
			yamlContent := `
sources:
  - type: export-file
    name: vendor-drop
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("KAIRYX_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with partial YAML file", func() {
			yamlContent := `
addr: ":9090"
worker_count: 16
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("KAIRYX_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should merge with defaults for missing fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")       // From file
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)     // From file
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)     // From defaults
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 500_000) // From defaults
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("KAIRYX_QUEUE_SIZE", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigRulesSeeding(t *testing.T) {
	convey.Convey("Given a YAML file seeding normalization rules", t, func() {
		yamlContent := `
rules:
  cache_path: ""
  event_names:
    start_session: session_started
    purchase: item_purchased
  property_keys:
    value: revenue_usd
`
		tmpFile := createTempConfigFile(yamlContent)
		defer func() { _ = os.Remove(tmpFile) }()

		_ = os.Setenv("KAIRYX_CONFIG", tmpFile)
		defer clearConfigEnvVars()

		convey.Convey("When loading", func() {
			cfg, err := config.Load()

			convey.Convey("Then the rule maps are populated", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Rules.EventNames["start_session"], convey.ShouldEqual, "session_started")
				convey.So(cfg.Rules.PropertyKeys["value"], convey.ShouldEqual, "revenue_usd")
				convey.So(cfg.Rules.CachePath, convey.ShouldBeEmpty)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"KAIRYX_CONFIG",
		"KAIRYX_ADDR",
		"KAIRYX_QUEUE_SIZE",
		"KAIRYX_WORKER_COUNT",
		"KAIRYX_DEDUPE_SIZE",
		"KAIRYX_SESSION_GAP_MINUTES",
		"KAIRYX_WAREHOUSE__DRIVER",
		"KAIRYX_WAREHOUSE__PATH",
		"KAIRYX_AI__PROVIDER",
		"KAIRYX_AI__REQUESTS_PER_MINUTE",
		"KAIRYX_LAKE__BUCKET",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "kairyx-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
