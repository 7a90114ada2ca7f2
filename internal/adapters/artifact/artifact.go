// Package artifact locates the model artifact on disk, derives its identity
// from the path and turns it into a scoring.Predictor.
package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/okian/housescore/internal/adapters/bridge"
	"github.com/okian/housescore/internal/domain/schema"
	"github.com/okian/housescore/internal/domain/scoring"
)

// DefaultFile is the artifact file name inside the model directory.
const DefaultFile = "model.pkl"

// Unknown is reported when a name or version cannot be derived from the path.
const Unknown = "unknown"

// Format identifies how an artifact is decoded.
type Format string

// Supported artifact formats.
const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatPickle Format = "pickle"
)

// Metadata describes a resolved artifact.
type Metadata struct {
	Path    string
	Name    string
	Version string
	Format  Format
	Size    int64
}

// Resolve joins dir and file, checks that the result is a non-empty regular
// file and detects its format from the extension.
func Resolve(dir, file string) (Metadata, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return Metadata{}, ErrModelDirUnset
	}
	if strings.TrimSpace(file) == "" {
		file = DefaultFile
	}
	path, err := filepath.Abs(filepath.Join(dir, file))
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to resolve artifact path %q: %w", filepath.Join(dir, file), err)
	}

	format, err := FormatOf(path)
	if err != nil {
		return Metadata{}, err
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Metadata{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	case err != nil:
		return Metadata{}, fmt.Errorf("failed to stat artifact %s: %w", path, err)
	case info.IsDir():
		return Metadata{}, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	case info.Size() == 0:
		return Metadata{}, fmt.Errorf("%w: %s", ErrEmpty, path)
	}

	name, version := Describe(path)
	return Metadata{
		Path:    path,
		Name:    name,
		Version: version,
		Format:  format,
		Size:    info.Size(),
	}, nil
}

// Describe derives the model name and version from the two directories
// above the artifact, as in <root>/<name>/<version>/model.pkl.
func Describe(path string) (name, version string) {
	segments := strings.Split(filepath.ToSlash(path), "/")
	name, version = Unknown, Unknown
	if n := len(segments); n >= 3 {
		if s := segments[n-3]; s != "" {
			name = s
		}
		if s := segments[n-2]; s != "" {
			version = s
		}
	}
	return name, version
}

// FormatOf maps a file extension to its Format.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".pkl", ".pickle", ".joblib":
		return FormatPickle, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Option configures a Loader.
type Option func(*Loader)

// WithBridgeCommand sets the external command used for pickle artifacts.
func WithBridgeCommand(command []string) Option {
	return func(l *Loader) {
		l.bridgeCommand = command
	}
}

// WithBridgeOptions passes options through to the bridge predictor.
func WithBridgeOptions(opts ...bridge.Option) Option {
	return func(l *Loader) {
		l.bridgeOpts = append(l.bridgeOpts, opts...)
	}
}

// Loader builds predictors from resolved artifacts.
type Loader struct {
	schema        *schema.Schema
	bridgeCommand []string
	bridgeOpts    []bridge.Option
}

// NewLoader creates a Loader validating artifacts against s.
func NewLoader(s *schema.Schema, opts ...Option) *Loader {
	l := &Loader{schema: s}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load deserializes the artifact described by meta. Pickle artifacts are
// probed through the bridge so an unreadable file fails here, not on the
// first request.
func (l *Loader) Load(ctx context.Context, meta Metadata) (scoring.Predictor, error) {
	switch meta.Format {
	case FormatJSON, FormatYAML:
		doc, err := readDocument(meta)
		if err != nil {
			return nil, err
		}
		p, err := scoring.NewNativePredictor(doc, l.schema)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, meta.Path, err)
		}
		return p, nil
	case FormatPickle:
		p, err := bridge.New(l.bridgeCommand, meta.Path, l.schema, l.bridgeOpts...)
		if err != nil {
			return nil, err
		}
		if err := p.Probe(ctx); err != nil {
			return nil, fmt.Errorf("failed to load %s through bridge: %w", meta.Path, err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, meta.Format)
	}
}

func readDocument(meta Metadata) (scoring.Document, error) {
	raw, err := os.ReadFile(meta.Path)
	if err != nil {
		return scoring.Document{}, fmt.Errorf("failed to read artifact %s: %w", meta.Path, err)
	}

	var doc scoring.Document
	switch meta.Format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		err = dec.Decode(&doc)
	}
	if err != nil {
		return scoring.Document{}, fmt.Errorf("%w: %s: %w", ErrCorrupt, meta.Path, err)
	}
	return doc, nil
}
