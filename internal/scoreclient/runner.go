// Package scoreclient drives a running scoring service end to end: it
// generates valid feature rows, scores them in concurrent batches and checks
// the answers line up with the rows that were sent.
package scoreclient

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/housescore/internal/domain/schema"
	"github.com/okian/housescore/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run executes the complete smoke test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}
	sc := schema.HousePrices()
	client := NewHTTPClient(config.BaseURL, config.Timeout)

	logger.Get().Info(ctx, "starting scoring smoke test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("rows", config.NumRows),
		logger.Int("batchSize", config.BatchSize),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("orientation", config.Orientation),
		logger.Bool("verbose", config.Verbose))

	// Step 1: Check the model is loaded
	if err := checkServiceHealth(ctx, client); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate rows
	rows, err := GenerateRows(ctx, sc, config.NumRows)
	if err != nil {
		return fmt.Errorf("row generation failed: %w", err)
	}
	stats.RowsGenerated = len(rows)

	// Step 3: Score batches concurrently
	batches := submitBatches(ctx, config, client, sc, rows, stats)

	// Step 4: Verify ordering on a sample
	if err := verifyOrder(ctx, config, client, sc, batches, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 5: Save rows to file
	if config.OutputFile != "" {
		if err := saveRowsToFile(ctx, config.OutputFile, rows); err != nil {
			logger.Get().Warn(ctx, "failed to save rows to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if stats.BatchesFailed > 0 || stats.BatchesSubmitted < len(Batches(rows, config.BatchSize)) {
		return fmt.Errorf("%w: %d of %d", ErrBatchesFailed, stats.BatchesFailed, stats.BatchesSubmitted)
	}
	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service has its model loaded.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service readiness")

	resp, err := client.Get(ctx, "/readyz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrUnhealthy, resp.StatusCode, body)
	}

	logger.Get().Info(ctx, "service is ready")
	return nil
}

// saveRowsToFile saves the generated rows to a JSON file.
func saveRowsToFile(ctx context.Context, filename string, rows []Row) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rows: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "rows saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, rowsPerSecond float64

	if stats.BatchesSubmitted > 0 {
		successRate = float64(stats.BatchesSuccessful) / float64(stats.BatchesSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		rowsPerSecond = float64(stats.RowsScored) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("rowsGenerated", stats.RowsGenerated),
		logger.Int("batchesSubmitted", stats.BatchesSubmitted),
		logger.Int("batchesSuccessful", stats.BatchesSuccessful),
		logger.Int("batchesFailed", stats.BatchesFailed),
		logger.Int("rowsScored", stats.RowsScored),
		logger.Int("orderChecked", stats.OrderChecked),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("rowsPerSecond", rowsPerSecond))
}
