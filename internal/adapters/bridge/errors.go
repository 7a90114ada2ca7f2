package bridge

import "errors"

// Sentinel kinds for bridge errors.
var (
	ErrUnavailable = errors.New("bridge unavailable")
	ErrInference   = errors.New("bridge inference failed")
	ErrProtocol    = errors.New("bridge protocol error")
)
