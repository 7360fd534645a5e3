package source

import "errors"

// Sentinel kinds for source errors.
var (
	ErrUnknownSource = errors.New("unknown source")
	ErrBadWindow     = errors.New("invalid export window")
	ErrNoExportDir   = errors.New("export directory is required")
)
