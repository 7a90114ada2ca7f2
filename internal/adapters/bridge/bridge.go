// Package bridge scores rows with an external process, for artifacts such as
// pickled scikit-learn pipelines that cannot be evaluated in-process.
//
// Each call runs the configured command once, writes a JSON request on its
// stdin and reads a JSON response from its stdout:
//
//	request:  {"op": "load"|"predict", "artifact_path": "...", "columns": [...], "rows": [[...], ...]}
//	response: {"results": [...], "error": "..."}
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/okian/housescore/internal/domain/schema"
)

// Bridge operations.
const (
	OpLoad    = "load"
	OpPredict = "predict"
)

// Request is the JSON document written to the bridge process.
type Request struct {
	Op           string   `json:"op"`
	ArtifactPath string   `json:"artifact_path"`
	Columns      []string `json:"columns"`
	Rows         [][]any  `json:"rows"`
}

type response struct {
	Results []*float64 `json:"results"`
	Error   string     `json:"error,omitempty"`
}

// runFunc executes the bridge command with payload on stdin and returns stdout.
type runFunc func(ctx context.Context, command []string, payload []byte) ([]byte, error)

// Option configures a Predictor.
type Option func(*Predictor)

// WithRunner replaces process execution, mainly for tests.
func WithRunner(run func(ctx context.Context, command []string, payload []byte) ([]byte, error)) Option {
	return func(p *Predictor) {
		if run != nil {
			p.run = run
		}
	}
}

// Predictor implements scoring.Predictor over an external command.
type Predictor struct {
	command      []string
	artifactPath string
	columns      []string
	run          runFunc
}

// ParseCommand splits a configured command line on whitespace.
// An empty line yields no command.
func ParseCommand(raw string) []string {
	return strings.Fields(raw)
}

// New builds a bridge predictor for the artifact at artifactPath.
func New(command []string, artifactPath string, s *schema.Schema, opts ...Option) (*Predictor, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("%w: bridge command is not configured", ErrUnavailable)
	}
	p := &Predictor{
		command:      command,
		artifactPath: artifactPath,
		columns:      s.Names(),
		run:          runCommand,
	}

	// Apply all options
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Name reports the bridge executable.
func (p *Predictor) Name() string {
	return "bridge:" + filepath.Base(p.command[0])
}

// Probe asks the bridge to deserialize the artifact without scoring, so a
// corrupt or incompatible artifact fails at load time.
func (p *Predictor) Probe(ctx context.Context) error {
	_, err := p.call(ctx, Request{Op: OpLoad, ArtifactPath: p.artifactPath, Columns: p.columns, Rows: [][]any{}})
	return err
}

// Predict scores rows through the bridge; one result per row, in order.
func (p *Predictor) Predict(ctx context.Context, rows []schema.Row) ([]float64, error) {
	if len(rows) == 0 {
		return []float64{}, nil
	}
	table := make([][]any, len(rows))
	for i, row := range rows {
		if row.Len() != len(p.columns) {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", ErrProtocol, i, row.Len(), len(p.columns))
		}
		table[i] = row.Interfaces()
	}

	results, err := p.call(ctx, Request{Op: OpPredict, ArtifactPath: p.artifactPath, Columns: p.columns, Rows: table})
	if err != nil {
		return nil, err
	}
	if len(results) != len(rows) {
		return nil, fmt.Errorf("%w: bridge returned %d results for %d rows", ErrProtocol, len(results), len(rows))
	}
	out := make([]float64, len(results))
	for i, r := range results {
		if r == nil {
			return nil, fmt.Errorf("%w: bridge returned null for row %d", ErrProtocol, i)
		}
		out[i] = *r
	}
	return out, nil
}

// Close is a no-op; no process outlives a call.
func (p *Predictor) Close() error { return nil }

func (p *Predictor) call(ctx context.Context, req Request) ([]*float64, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode bridge request: %w", ErrProtocol, err)
	}
	stdout, err := p.run(ctx, p.command, payload)
	if err != nil {
		return nil, err
	}
	var decoded response
	if err := json.Unmarshal(stdout, &decoded); err != nil {
		return nil, fmt.Errorf("%w: failed to decode bridge response: %w", ErrProtocol, err)
	}
	if msg := strings.TrimSpace(decoded.Error); msg != "" {
		return nil, fmt.Errorf("%w: bridge runtime error: %s", ErrInference, msg)
	}
	return decoded.Results, nil
}

func runCommand(ctx context.Context, command []string, payload []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if runErr := cmd.Run(); runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		kind := ErrInference
		var execErr *exec.Error
		var pathErr *os.PathError
		if errors.As(runErr, &execErr) || errors.As(runErr, &pathErr) {
			kind = ErrUnavailable
		}
		if errText := strings.TrimSpace(stderr.String()); errText != "" {
			return nil, fmt.Errorf("%w: bridge command failed: %w: %s", kind, runErr, errText)
		}
		return nil, fmt.Errorf("%w: bridge command failed: %w", kind, runErr)
	}
	return stdout.Bytes(), nil
}
