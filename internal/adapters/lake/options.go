package lake

import "time"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithBucket sets the bucket name used in blob URIs.
func WithBucket(bucket string) Option {
	return func(s *Store) {
		if bucket != "" {
			s.bucket = bucket
		}
	}
}

// WithNow sets the clock used for blob naming. Intended for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}
