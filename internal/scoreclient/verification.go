package scoreclient

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/housescore/internal/domain/schema"
	"github.com/okian/housescore/pkg/logger"
)

// sample is one row of a scored batch.
type sample struct {
	batch, pos int
}

// verifyOrder re-scores a sample of rows one at a time and checks each
// matches the value its batch returned at the same position.
func verifyOrder(ctx context.Context, config *Config, client *HTTPClient, sc *schema.Schema, batches []Batch, stats *Stats) error {
	samples := pickSamples(batches, config.OrderChecks)
	logger.Get().Info(ctx, "verifying result order", logger.Int("samples", len(samples)))

	for _, s := range samples {
		b := batches[s.batch]
		row := b.Rows[s.pos]
		results, requestID, err := client.Score(ctx, ScoreRequest{
			Inputs:           Inputs{Data: Table(sc, []Row{row}, config.Orientation)},
			GlobalParameters: 1.0,
		})
		if err != nil {
			return fmt.Errorf("re-scoring row %d of batch %d: %w", s.pos, s.batch, err)
		}
		if len(results) != 1 {
			return fmt.Errorf("%w: %d results for 1 row", ErrResultCount, len(results))
		}
		if !sameScore(results[0], b.Results[s.pos]) {
			return fmt.Errorf("%w: batch %d row %d (Id %v): batch %v, single %v (request %s)",
				ErrOrderMismatch, s.batch, s.pos, row["Id"], b.Results[s.pos], results[0], requestID)
		}
		stats.OrderChecked++
	}

	logger.Get().Info(ctx, "result order verified", logger.Int("checked", stats.OrderChecked))
	return nil
}

// pickSamples spreads up to n samples evenly over the successful batches,
// alternating between the first and last row of each.
func pickSamples(batches []Batch, n int) []sample {
	var ok []int
	for i, b := range batches {
		if b.Err == nil && len(b.Rows) > 0 {
			ok = append(ok, i)
		}
	}
	if n <= 0 || len(ok) == 0 {
		return nil
	}
	step := maxInt(1, len(ok)/n)
	out := make([]sample, 0, n)
	for i := 0; i < len(ok) && len(out) < n; i += step {
		b := ok[i]
		pos := 0
		if len(out)%2 == 1 {
			pos = len(batches[b].Rows) - 1
		}
		out = append(out, sample{batch: b, pos: pos})
	}
	return out
}

// sameScore compares two predictions with a relative tolerance.
func sameScore(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= orderTolerance*math.Max(math.Abs(a), math.Abs(b))
}
