package artifact

import "errors"

// Sentinel kinds for artifact errors.
var (
	ErrModelDirUnset     = errors.New("model directory is not set")
	ErrNotFound          = errors.New("model artifact not found")
	ErrIsDirectory       = errors.New("model artifact is a directory")
	ErrEmpty             = errors.New("model artifact is empty")
	ErrUnsupportedFormat = errors.New("unsupported model artifact format")
	ErrCorrupt           = errors.New("model artifact is corrupt")
)
