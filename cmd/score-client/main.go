package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/housescore/internal/scoreclient"
)

// Default configuration constants.
const (
	defaultNumRows     = 1000
	defaultBatchSize   = 50
	defaultOrderChecks = 20
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:5001", "Base URL of the service")
		numRows     = flag.Int("rows", defaultNumRows, "Number of rows to generate and score")
		batchSize   = flag.Int("batch", defaultBatchSize, "Rows per scoring request")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		orientation = flag.String("orient", scoreclient.OrientRecords, "Table orientation: records or split")
		orderChecks = flag.Int("checks", defaultOrderChecks, "Rows re-scored one by one to verify ordering")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile  = flag.String("output", "", "Output file for generated rows")
		logFile     = flag.String("log", "", "Log file for test output (default: score_client_TIMESTAMP.log)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		scoreclient.ShowHelp()
		return
	}

	if err := scoreclient.SetupLogging(*logFile, *verbose); err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &scoreclient.Config{
		BaseURL:     *baseURL,
		NumRows:     *numRows,
		BatchSize:   *batchSize,
		Workers:     *workers,
		Timeout:     *timeout,
		Orientation: *orientation,
		OrderChecks: *orderChecks,
		OutputFile:  *outputFile,
		LogFile:     *logFile,
		Verbose:     *verbose,
	}

	if err := scoreclient.Run(ctx, config); err != nil {
		_, _ = os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1) //nolint:gocritic // cancel called explicitly above
	}
}
