package normalize

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Store holds the active rewrite rules, merging built-in defaults with
// operator-added rules. When a cache path is configured the merged tables
// are persisted on every change and reloaded on startup.
type Store struct {
	mu    sync.RWMutex
	rules Rules
	path  string // empty disables persistence
}

// NewStore creates a rule store seeded with the default tables, then any
// configured overrides, then the persisted cache if one exists.
func NewStore(opts ...Option) (*Store, error) {
	s := &Store{
		rules: DefaultRules(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.path != "" {
		if err := s.load(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Rules returns a copy of the active rule tables.
func (s *Store) Rules() Rules {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rules.clone()
}

// AddEventRule registers a rewrite from a raw event name to a normalized one.
func (s *Store) AddEventRule(rawName, normalizedName string) error {
	if rawName == "" || normalizedName == "" {
		return ErrEmptyRule
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules.EventNames[rawName] = normalizedName
	return s.saveLocked()
}

// AddPropertyRule registers a rewrite from a raw property key to a
// normalized one.
func (s *Store) AddPropertyRule(rawKey, normalizedKey string) error {
	if rawKey == "" || normalizedKey == "" {
		return ErrEmptyRule
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules.PropertyKeys[rawKey] = normalizedKey
	return s.saveLocked()
}

// load merges the persisted rule cache over the current tables. A missing
// cache file is not an error; a corrupt one is.
func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read rule cache: %w", err)
	}

	var cached Rules
	if err := json.Unmarshal(data, &cached); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptRuleCache, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range cached.EventNames {
		s.rules.EventNames[k] = v
	}
	for k, v := range cached.PropertyKeys {
		s.rules.PropertyKeys[k] = v
	}
	return nil
}

// saveLocked persists the tables. Must be called with s.mu held.
func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(s.rules, "", "  ")
	if err != nil {
		return fmt.Errorf("encode rule cache: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write rule cache: %w", err)
	}
	return nil
}
