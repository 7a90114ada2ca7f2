package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrInvalidModel        = errors.New("invalid model document")
	ErrRowWidth            = errors.New("row width does not match schema")
	ErrNonFinitePrediction = errors.New("non-finite prediction")
)
