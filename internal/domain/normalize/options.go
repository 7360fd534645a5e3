// Package normalize rewrites raw analytics events onto the canonical taxonomy.
package normalize

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithCachePath sets the file used to persist operator-added rules.
// An empty path disables persistence.
func WithCachePath(path string) Option {
	return func(s *Store) {
		s.path = path
	}
}

// WithRules replaces the seed rule tables entirely. Intended for tests and
// for deployments that opt out of the built-in taxonomy.
func WithRules(rules Rules) Option {
	return func(s *Store) {
		s.rules = rules.clone()
	}
}
