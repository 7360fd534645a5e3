package cohort

import "github.com/kairyx-ai/kairyx/pkg/logger"

// Option applies a configuration option to the Segmenter.
type Option func(*Segmenter)

// WithConcurrency bounds the number of players profiled in parallel.
func WithConcurrency(n int) Option {
	return func(s *Segmenter) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Segmenter) {
		if log != nil {
			s.log = log
		}
	}
}
