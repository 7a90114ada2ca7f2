package schema

import "errors"

// Sentinel kinds for schema errors.
var (
	ErrUnknownColumn   = errors.New("unknown column")
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrOutOfRange      = errors.New("value out of range")
	ErrNullValue       = errors.New("null not allowed")
)
