// Package scoring defines the contract for computing predictions from
// validated feature rows, and the in-process estimators that implement it.
package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/housescore/internal/domain/schema"
)

// Rows between context checks while predicting.
const ctxCheckInterval = 256

// Predictor turns feature rows into one prediction per row, in row order.
// Implementations must be safe for concurrent use once constructed.
type Predictor interface {
	// Name identifies the predictor implementation.
	Name() string

	// Predict scores rows, honoring ctx for cancellation.
	Predict(ctx context.Context, rows []schema.Row) ([]float64, error)

	// Close releases resources held by the predictor.
	Close() error
}

// Estimator scores a single row. Compiled estimators are immutable.
type Estimator interface {
	Estimate(row schema.Row) float64
}

// Option applies a configuration option to the NativePredictor.
type Option func(*NativePredictor)

// WithName overrides the predictor name reported by Name.
func WithName(name string) Option {
	return func(p *NativePredictor) {
		if name != "" {
			p.name = name
		}
	}
}

// NativePredictor implements Predictor with an in-process Estimator.
type NativePredictor struct {
	est   Estimator
	name  string
	width int
}

// NewNativePredictor compiles doc against s and wraps it as a Predictor.
func NewNativePredictor(doc Document, s *schema.Schema, opts ...Option) (*NativePredictor, error) {
	est, err := Compile(doc, s)
	if err != nil {
		return nil, err
	}
	p := &NativePredictor{
		est:   est,
		name:  doc.Kind,
		width: s.Len(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Name returns the estimator kind, unless overridden.
func (p *NativePredictor) Name() string { return p.name }

// Predict scores every row in order.
func (p *NativePredictor) Predict(ctx context.Context, rows []schema.Row) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("context cancelled: %w", err)
			}
		}
		if row.Len() != p.width {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", ErrRowWidth, i, row.Len(), p.width)
		}
		y := p.est.Estimate(row)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return nil, fmt.Errorf("%w: row %d", ErrNonFinitePrediction, i)
		}
		out[i] = y
	}
	return out, nil
}

// Close is a no-op; native estimators hold no external resources.
func (p *NativePredictor) Close() error { return nil }
