package jobs

import "errors"

// Sentinel kinds for job tracker errors.
var (
	ErrJobNotFound      = errors.New("job not found")
	ErrJobNotProcessing = errors.New("job is not processing")
	ErrJobNotReady      = errors.New("job is not ready")
	ErrNoSource         = errors.New("source is required")
	ErrCorruptJobCache  = errors.New("corrupt job cache")
)
