package decision

import (
	"time"

	"github.com/kairyx-ai/kairyx/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithNow sets the clock used to stamp actions. Intended for tests.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}
