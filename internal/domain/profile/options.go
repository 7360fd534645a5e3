// Package profile builds behavioral player profiles and churn estimates
// from normalized events.
package profile

import "time"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithSessionGap sets the inactivity threshold that closes a session.
func WithSessionGap(gap time.Duration) Option {
	return func(e *Engine) {
		if gap > 0 {
			e.sessionGap = gap
		}
	}
}

// WithNow sets the clock used for recency math. Intended for tests.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}
