package scoreclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/housescore/internal/domain/schema"
	"github.com/okian/housescore/pkg/logger"
)

// Request id headers used by the scoring endpoint.
const (
	headerClientRequestID = "x-ms-client-request-id"
	headerRequestID       = "x-ms-request-id"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a new HTTP client with timeout
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Score posts one scoring request and returns its results and the request
// id the service answered with.
func (c *HTTPClient) Score(ctx context.Context, body ScoreRequest) ([]float64, string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/score", bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.New().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerClientRequestID, requestID)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, requestID, fmt.Errorf("failed to call service: %w", err)
	}
	data, err := readResponseBody(resp)
	if err != nil {
		return nil, requestID, err
	}

	if echoed := resp.Header.Get(headerRequestID); echoed != requestID {
		return nil, requestID, fmt.Errorf("%w: sent %s, got %q", ErrRequestIDMismatch, requestID, echoed)
	}
	if resp.StatusCode != StatusOK {
		var e ErrorResponse
		_ = json.Unmarshal(data, &e)
		return nil, requestID, fmt.Errorf("%w: %d %s: %s", ErrUnexpectedStatus, resp.StatusCode, e.Code, e.Message)
	}

	var out ScoreResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, requestID, fmt.Errorf("failed to decode response: %w", err)
	}
	return out.Results, requestID, nil
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}

// submitBatches scores every batch concurrently using a worker pool.
func submitBatches(ctx context.Context, config *Config, client *HTTPClient, sc *schema.Schema, rows []Row, stats *Stats) []Batch {
	groups := Batches(rows, config.BatchSize)
	logger.Get().Info(ctx, "submitting batches",
		logger.Int("batches", len(groups)),
		logger.Int("workers", config.Workers),
		logger.String("orientation", config.Orientation))

	batches := make([]Batch, len(groups))
	var (
		submitted  int64
		successful int64
		failed     int64
	)

	workers := maxInt(1, config.Workers)
	work := make(chan int, workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				b := Batch{Index: idx, Rows: groups[idx]}
				b.Results, b.RequestID, b.Err = client.Score(ctx, ScoreRequest{
					Inputs:           Inputs{Data: Table(sc, b.Rows, config.Orientation)},
					GlobalParameters: 1.0,
				})
				if b.Err == nil && len(b.Results) != len(b.Rows) {
					b.Err = fmt.Errorf("%w: %d results for %d rows", ErrResultCount, len(b.Results), len(b.Rows))
				}
				batches[idx] = b

				atomic.AddInt64(&submitted, 1)
				if b.Err != nil {
					atomic.AddInt64(&failed, 1)
					logger.Get().Warn(ctx, "batch failed",
						logger.Int("batch", idx),
						logger.String("request_id", b.RequestID),
						logger.Error(b.Err))
					continue
				}
				atomic.AddInt64(&successful, 1)
				if config.Verbose {
					logger.Get().Debug(ctx, "batch scored", logger.Int("batch", idx), logger.String("request_id", b.RequestID))
				}
			}
		}()
	}

	go func() {
		defer close(work)
		for i := range groups {
			select {
			case <-ctx.Done():
				return
			case work <- i:
			}
		}
	}()

	wg.Wait()

	stats.BatchesSubmitted = int(atomic.LoadInt64(&submitted))
	stats.BatchesSuccessful = int(atomic.LoadInt64(&successful))
	stats.BatchesFailed = int(atomic.LoadInt64(&failed))
	for _, b := range batches {
		if b.Err == nil {
			stats.RowsScored += len(b.Results)
		}
	}

	logger.Get().Info(ctx, "batch submission completed",
		logger.Int("successful", stats.BatchesSuccessful),
		logger.Int("failed", stats.BatchesFailed))
	return batches[:stats.BatchesSubmitted]
}

// maxInt returns the maximum of two integers.
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
