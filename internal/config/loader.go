package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if KAIRYX_CONFIG is set
//  3. env (prefix KAIRYX_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("KAIRYX_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: KAIRYX_ADDR, KAIRYX_QUEUE_SIZE, ...
	// Flat keys keep their underscores to match the koanf tags; a double
	// underscore descends into nested sections, e.g.
	// KAIRYX_WAREHOUSE__DRIVER -> warehouse.driver.
	envProvider := env.Provider("KAIRYX_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "kairyx_")
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	}
	if c.SessionGapMinutes <= 0 {
		return fmt.Errorf("%w: session_gap_minutes must be positive", ErrInvalidConfig)
	}
	switch c.Warehouse.Driver {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("%w: unknown warehouse driver %q", ErrInvalidConfig, c.Warehouse.Driver)
	}
	switch c.AI.Provider {
	case "sim", "gemini":
	default:
		return fmt.Errorf("%w: unknown ai provider %q", ErrInvalidConfig, c.AI.Provider)
	}
	if c.AI.Provider == "gemini" && c.AI.APIKey == "" {
		return fmt.Errorf("%w: ai.api_key is required for the gemini provider", ErrInvalidConfig)
	}
	if c.AI.SimMalformedRate < 0 || c.AI.SimMalformedRate > 1 {
		return fmt.Errorf("%w: ai.sim_malformed_rate must be within [0,1]", ErrInvalidConfig)
	}
	for _, src := range c.Sources {
		switch src.Type {
		case "synthetic":
		case "export-file":
			if src.Dir == "" {
				return fmt.Errorf("%w: export-file source %q needs a dir", ErrInvalidConfig, src.Name)
			}
		default:
			return fmt.Errorf("%w: unknown source type %q", ErrInvalidConfig, src.Type)
		}
	}
	return nil
}
