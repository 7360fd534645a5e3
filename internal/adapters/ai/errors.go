package ai

import (
	"errors"
)

// Sentinel kinds for model client errors.
var (
	ErrNoAPIKey    = errors.New("model api key is required")
	ErrEmptyPrompt = errors.New("prompt must be non-empty")
	ErrBadStatus   = errors.New("model request rejected")
	ErrNoContent   = errors.New("model response missing text content")
)
