package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotReady         = errors.New("model is not loaded")
	ErrPredictionFailed = errors.New("prediction failed")
	ErrResultCount      = errors.New("predictor returned wrong number of results")
)
