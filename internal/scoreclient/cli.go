package scoreclient

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/housescore/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "score_client_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithWriter(io.MultiWriter(os.Stdout, file))); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the score client.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`House Price Score Client
========================

Scores generated feature rows against a running scoring service and checks
that every batch returns one result per row, in row order.

Usage:
  go run ./cmd/score-client [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:5001")
  -rows int
        Number of rows to generate and score (default 1000)
  -batch int
        Rows per scoring request (default 50)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -orient string
        Table orientation, records or split (default "records")
  -checks int
        Rows re-scored one by one to verify ordering (default 20)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for generated rows (default: not saved)
  -log string
        Log file for test output (default: score_client_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Smoke test a local service
  go run ./cmd/score-client

  # Larger run using the split orientation
  go run ./cmd/score-client -rows 20000 -batch 200 -orient split -url http://localhost:8080
`)
}
