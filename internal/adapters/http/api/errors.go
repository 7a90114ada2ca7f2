package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrBodyTooLarge     = errors.New("request body too large")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrNotReady         = errors.New("model is not loaded")
	ErrPredictionFailed = errors.New("prediction failed")
)

// KindError tags an error with the operation that failed and its API kind.
type KindError struct {
	Op   string
	Kind error
	Err  error
}

func (e *KindError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
}

func (e *KindError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// WrapKind attaches op and kind to err.
func WrapKind(op string, kind, err error) error {
	return &KindError{Op: op, Kind: kind, Err: err}
}

// NewKind reports a failure of op that has no underlying cause worth exposing.
func NewKind(op string, kind error) error {
	return &KindError{Op: op, Kind: kind}
}
