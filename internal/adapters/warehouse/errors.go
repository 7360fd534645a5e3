package warehouse

import "errors"

// Sentinel kinds for warehouse errors.
var (
	ErrClosed = errors.New("warehouse is closed")
	ErrNoPath = errors.New("warehouse path is required")
)
