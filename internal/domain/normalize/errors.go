package normalize

import (
	"errors"
)

// Sentinel kinds for normalization errors.
var (
	ErrBadPayload       = errors.New("raw event payload is not a JSON array")
	ErrEmptyRule        = errors.New("rule names must be non-empty")
	ErrCorruptRuleCache = errors.New("rule cache is corrupt")
)
