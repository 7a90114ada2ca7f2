package scoreclient

import "time"

// Table orientations understood by the scoring endpoint.
const (
	OrientRecords = "records"
	OrientSplit   = "split"
)

// Config holds configuration for the scoring smoke test
type Config struct {
	BaseURL     string        // Base URL of the service
	NumRows     int           // Number of rows to generate
	BatchSize   int           // Rows per scoring request
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	Orientation string        // records or split
	OrderChecks int           // Rows re-scored one by one to verify ordering
	OutputFile  string        // Output file for generated rows
	LogFile     string        // Log file for test output
	Verbose     bool          // Enable verbose logging
}

// Row is one generated feature record keyed by column name.
type Row map[string]any

// Batch is a group of rows sent in one request, with what came back.
type Batch struct {
	Index     int
	Rows      []Row
	Results   []float64
	RequestID string
	Err       error
}

// ScoreRequest is the invocation payload.
type ScoreRequest struct {
	Inputs           Inputs  `json:"Inputs"`
	GlobalParameters float64 `json:"GlobalParameters"`
}

// Inputs wraps the feature table.
type Inputs struct {
	Data any `json:"data"`
}

// SplitTable is the column-oriented form of a feature table.
type SplitTable struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// ScoreResponse is the invocation result.
type ScoreResponse struct {
	Results []float64 `json:"Results"`
}

// ErrorResponse is the error envelope returned by the service.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Stats holds test statistics
type Stats struct {
	RowsGenerated     int
	BatchesSubmitted  int
	BatchesSuccessful int
	BatchesFailed     int
	RowsScored        int
	OrderChecked      int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
