package jobs

import "time"

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithCachePath enables JSON-file persistence of job records.
func WithCachePath(path string) Option {
	return func(t *Tracker) {
		t.cachePath = path
	}
}

// WithTTL sets how long non-ready job records are retained.
func WithTTL(ttl time.Duration) Option {
	return func(t *Tracker) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithNow sets the clock used for job naming and expiry. Intended for tests.
func WithNow(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}
