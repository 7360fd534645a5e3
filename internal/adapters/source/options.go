package source

import "github.com/kairyx-ai/kairyx/pkg/logger"

// SyntheticOption applies a configuration option to the Synthetic connector.
type SyntheticOption func(*Synthetic)

// WithSyntheticName sets the connector instance name.
func WithSyntheticName(name string) SyntheticOption {
	return func(s *Synthetic) {
		if name != "" {
			s.name = name
		}
	}
}

// WithSyntheticPlayers sets how many players the generator fabricates.
func WithSyntheticPlayers(players int) SyntheticOption {
	return func(s *Synthetic) {
		if players > 0 {
			s.players = players
		}
	}
}

// WithSyntheticSeed sets the generator seed.
func WithSyntheticSeed(seed int64) SyntheticOption {
	return func(s *Synthetic) {
		s.seed = seed
	}
}

// WithSyntheticPurchaseRate sets the per-session purchase probability.
func WithSyntheticPurchaseRate(rate float64) SyntheticOption {
	return func(s *Synthetic) {
		if rate >= 0 && rate <= 1 {
			s.purchaseRate = rate
		}
	}
}

// ExportFileOption applies a configuration option to the ExportFile connector.
type ExportFileOption func(*ExportFile)

// WithExportFileName sets the connector instance name.
func WithExportFileName(name string) ExportFileOption {
	return func(e *ExportFile) {
		if name != "" {
			e.name = name
		}
	}
}

// WithExportFileLogger sets a custom logger for the connector.
func WithExportFileLogger(log logger.Logger) ExportFileOption {
	return func(e *ExportFile) {
		if log != nil {
			e.log = log
		}
	}
}
