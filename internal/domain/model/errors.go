package model

import (
	"errors"
	"fmt"
)

// Sentinel kinds for request errors.
var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrMalformedRequest = errors.New("malformed request")
	ErrMissingField     = errors.New("missing field")
)

// ValidationError reports why a payload does not satisfy the request contract.
// Row is the zero-based row index, or -1 for request-level problems.
type ValidationError struct {
	Row    int
	Column string
	Err    error
}

func (e *ValidationError) Error() string {
	switch {
	case e.Row < 0 && e.Column != "":
		return fmt.Sprintf("%s: %v", e.Column, e.Err)
	case e.Row < 0:
		return e.Err.Error()
	case e.Column != "":
		return fmt.Sprintf("row %d, column %q: %v", e.Row, e.Column, e.Err)
	default:
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Is makes every validation error match ErrInvalidRequest.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidRequest }
