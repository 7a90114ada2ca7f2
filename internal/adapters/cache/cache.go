// Package cache memoizes per-row predictions in front of a scoring.Predictor.
// Rows are keyed by their canonical encoding, so identical feature rows are
// scored once and only misses reach the wrapped predictor.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/okian/housescore/internal/domain/schema"
	"github.com/okian/housescore/internal/domain/scoring"
	"github.com/okian/housescore/pkg/metrics"
)

// Option configures a Predictor.
type Option func(*Predictor)

// WithTTL expires cached predictions after ttl. Zero keeps them until evicted.
func WithTTL(ttl time.Duration) Option {
	return func(p *Predictor) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// Predictor wraps another predictor with a bounded row cache.
type Predictor struct {
	inner scoring.Predictor
	cache *ristretto.Cache
	ttl   time.Duration
}

// New wraps inner with a cache holding at most size rows.
func New(inner scoring.Predictor, size int64, opts ...Option) (*Predictor, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        10 * size,
		MaxCost:            size,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction cache: %w", err)
	}
	p := &Predictor{inner: inner, cache: c}

	// Apply all options
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Name reports the wrapped predictor.
func (p *Predictor) Name() string { return p.inner.Name() }

// Predict answers cached rows directly and forwards the rest, in order, to
// the wrapped predictor.
func (p *Predictor) Predict(ctx context.Context, rows []schema.Row) ([]float64, error) {
	out := make([]float64, len(rows))
	keys := make([]string, len(rows))
	var (
		missIdx  []int
		missRows []schema.Row
	)
	for i, row := range rows {
		keys[i] = row.Key()
		if v, ok := p.cache.Get(keys[i]); ok {
			if y, ok := v.(float64); ok {
				out[i] = y
				continue
			}
		}
		missIdx = append(missIdx, i)
		missRows = append(missRows, row)
	}
	metrics.RecordCacheHits(len(rows) - len(missIdx))
	metrics.RecordCacheMisses(len(missIdx))

	if len(missRows) == 0 {
		return out, nil
	}
	results, err := p.inner.Predict(ctx, missRows)
	if err != nil {
		return nil, err
	}
	if len(results) != len(missRows) {
		return nil, fmt.Errorf("%w: got %d results for %d rows", ErrResultCount, len(results), len(missRows))
	}
	for j, i := range missIdx {
		out[i] = results[j]
		p.cache.SetWithTTL(keys[i], results[j], 1, p.ttl)
	}
	return out, nil
}

// Wait blocks until pending cache writes are applied.
func (p *Predictor) Wait() { p.cache.Wait() }

// Close releases the cache and the wrapped predictor.
func (p *Predictor) Close() error {
	p.cache.Close()
	return p.inner.Close()
}
