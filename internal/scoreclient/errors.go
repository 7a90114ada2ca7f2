package scoreclient

import "errors"

// Sentinel kinds for smoke test failures.
var (
	ErrUnhealthy         = errors.New("service is not ready")
	ErrUnexpectedStatus  = errors.New("unexpected response status")
	ErrResultCount       = errors.New("result count does not match row count")
	ErrOrderMismatch     = errors.New("batch result does not match single-row result")
	ErrRequestIDMismatch = errors.New("request id was not echoed")
	ErrBatchesFailed     = errors.New("some batches failed")
)
