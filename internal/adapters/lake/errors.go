package lake

import "errors"

// Sentinel kinds for lake errors.
var (
	ErrNoDir        = errors.New("lake directory is required")
	ErrNoJobID      = errors.New("job id is required")
	ErrBadURI       = errors.New("malformed lake uri")
	ErrBlobNotFound = errors.New("blob not found")
)
