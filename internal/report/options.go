package report

import "github.com/kairyx-ai/kairyx/pkg/logger"

// Option applies a configuration option to the Reporter.
type Option func(*Reporter)

// WithLimit caps the number of at-risk players included per report.
func WithLimit(n int) Option {
	return func(r *Reporter) {
		if n > 0 {
			r.limit = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(r *Reporter) {
		if log != nil {
			r.log = log
		}
	}
}
