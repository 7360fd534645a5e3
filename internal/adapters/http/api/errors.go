package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")

	ErrMissingSource         = errors.New("missing source")
	ErrMissingStartDate      = errors.New("missing start_date")
	ErrMissingEndDate        = errors.New("missing end_date")
	ErrMissingJobName        = errors.New("missing job_name")
	ErrMissingRawName        = errors.New("missing raw_name")
	ErrMissingNormalizedName = errors.New("missing normalized_name")
)
