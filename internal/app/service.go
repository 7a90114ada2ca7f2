// Package service provides the scoring adapter: it loads the model artifact
// once at Init and answers validated scoring requests through Run.
package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/housescore/internal/adapters/artifact"
	"github.com/okian/housescore/internal/adapters/bridge"
	"github.com/okian/housescore/internal/adapters/cache"
	"github.com/okian/housescore/internal/domain/model"
	"github.com/okian/housescore/internal/domain/schema"
	"github.com/okian/housescore/internal/domain/scoring"
	"github.com/okian/housescore/internal/domain/types"
	"github.com/okian/housescore/pkg/logger"
	"github.com/okian/housescore/pkg/metrics"
	"github.com/okian/housescore/pkg/telemetry"
)

const millisecondsPerSecond = 1000

// Loader turns a resolved artifact into a predictor.
type Loader interface {
	Load(ctx context.Context, meta artifact.Metadata) (scoring.Predictor, error)
}

// loaded is the state published once Init succeeds.
type loaded struct {
	predictor scoring.Predictor
	info      types.ModelInfo
	logger    logger.Logger
	telemetry *telemetry.Client
	loadedAt  time.Time
}

// Service is the scoring adapter shared by the HTTP handlers.
type Service struct {
	// mu serializes Init and Close; Run only reads the published state.
	mu    sync.Mutex
	ready atomic.Pointer[loaded]

	// Configuration
	schema        *schema.Schema
	modelDir      string
	modelFile     string
	bridgeCommand []string
	cacheSize     int64
	cacheTTL      time.Duration
	loader        Loader

	// Observability
	logger    logger.Logger
	telemetry *telemetry.Client

	// Stats
	createdAt time.Time
	requests  atomic.Int64
	rows      atomic.Int64
	failures  atomic.Int64
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSchema overrides the feature schema requests are validated against.
func WithSchema(sc *schema.Schema) Option {
	return func(s *Service) {
		if sc != nil {
			s.schema = sc
		}
	}
}

// WithModelDir sets the directory holding the model artifact.
func WithModelDir(dir string) Option {
	return func(s *Service) {
		s.modelDir = dir
	}
}

// WithModelFile sets the artifact file name inside the model directory.
func WithModelFile(file string) Option {
	return func(s *Service) {
		if file != "" {
			s.modelFile = file
		}
	}
}

// WithBridgeCommand sets the external command used for pickle artifacts.
func WithBridgeCommand(command string) Option {
	return func(s *Service) {
		s.bridgeCommand = bridge.ParseCommand(command)
	}
}

// WithCacheSize enables the prediction cache with room for size rows.
func WithCacheSize(size int64) Option {
	return func(s *Service) {
		if size > 0 {
			s.cacheSize = size
		}
	}
}

// WithCacheTTL expires cached predictions after ttl.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithTelemetry sets the telemetry client.
func WithTelemetry(c *telemetry.Client) Option {
	return func(s *Service) {
		if c != nil {
			s.telemetry = c
		}
	}
}

// WithLoader replaces the artifact loader.
func WithLoader(l Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// New constructs a Service in the Uninitialized state.
func New(opts ...Option) *Service {
	s := &Service{
		schema:    schema.HousePrices(),
		modelFile: artifact.DefaultFile,
		telemetry: telemetry.Nop(),
		createdAt: time.Now(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.loader == nil {
		s.loader = artifact.NewLoader(s.schema, artifact.WithBridgeCommand(s.bridgeCommand))
	}
	return s
}

// Schema returns the feature schema requests must satisfy.
func (s *Service) Schema() *schema.Schema { return s.schema }

// Init loads the model artifact and moves the service to Ready. Calling it
// again once Ready is a no-op. On failure the service stays Uninitialized.
func (s *Service) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready.Load() != nil {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	start := time.Now()
	meta, err := artifact.Resolve(s.modelDir, s.modelFile)
	if err != nil {
		s.logger.Error(ctx, "model artifact resolution failed",
			logger.String("model_dir", s.modelDir),
			logger.String("model_file", s.modelFile),
			logger.Error(err),
		)
		return fmt.Errorf("init: %w", err)
	}

	// Model identity is attached to everything logged or sent from here on.
	log := s.logger.With(
		logger.String("model_name", meta.Name),
		logger.String("model_version", meta.Version),
	)
	tel := s.telemetry.With(map[string]string{
		"model_name":    meta.Name,
		"model_version": meta.Version,
	})

	log.Info(ctx, "loading model from path", logger.String("model_path", meta.Path), logger.String("format", string(meta.Format)))
	tel.Event(ctx, "model_loading", meta.Path)

	predictor, err := s.loader.Load(ctx, meta)
	if err != nil {
		log.Error(ctx, "model loading failed", logger.String("model_path", meta.Path), logger.Error(err))
		tel.Event(ctx, "model_load_failed", err.Error())
		return fmt.Errorf("init: %w", err)
	}
	name := predictor.Name()

	if s.cacheSize > 0 {
		cached, err := cache.New(predictor, s.cacheSize, cache.WithTTL(s.cacheTTL))
		if err != nil {
			_ = predictor.Close()
			log.Error(ctx, "prediction cache setup failed", logger.Error(err))
			return fmt.Errorf("init: %w", err)
		}
		predictor = cached
		log.Info(ctx, "prediction cache enabled", logger.Int64("cache_size", s.cacheSize), logger.Duration("cache_ttl", s.cacheTTL))
	}

	elapsed := time.Since(start)
	info := types.ModelInfo{
		Name:      meta.Name,
		Version:   meta.Version,
		Path:      meta.Path,
		Format:    string(meta.Format),
		Predictor: name,
	}
	s.ready.Store(&loaded{
		predictor: predictor,
		info:      info,
		logger:    log,
		telemetry: tel,
		loadedAt:  time.Now(),
	})

	metrics.RecordModelLoad(float64(elapsed.Microseconds()) / millisecondsPerSecond)
	metrics.SetModelInfo(info.Name, info.Version, info.Predictor)
	tel.Event(ctx, "model_loaded", meta.Path)
	tel.Timing(ctx, "model_load", elapsed)
	log.Info(ctx, "loading successful", logger.String("predictor", name), logger.Duration("duration", elapsed))
	return nil
}

// Run scores a validated request. Results are in input row order.
func (s *Service) Run(ctx context.Context, req model.Request) (model.Response, error) {
	st := s.ready.Load()
	if st == nil {
		return model.Response{}, ErrNotReady
	}
	s.requests.Add(1)

	if req.GlobalParameters != model.DefaultGlobalParameters {
		st.logger.Debug(ctx, "ignoring reserved GlobalParameters", logger.Float64("global_parameters", req.GlobalParameters))
	}
	if len(req.Rows) == 0 {
		return model.Response{Results: []float64{}}, nil
	}

	start := time.Now()
	results, err := st.predictor.Predict(ctx, req.Rows)
	elapsed := time.Since(start)
	metrics.RecordPredictionLatency(float64(elapsed.Microseconds()) / millisecondsPerSecond)

	if err == nil {
		err = checkResults(results, len(req.Rows))
	}
	if err != nil {
		s.failures.Add(1)
		metrics.RecordPredictionError()
		st.logger.Error(ctx, "prediction failed", logger.Int("rows", len(req.Rows)), logger.Error(err))
		return model.Response{}, fmt.Errorf("%w: %w", ErrPredictionFailed, err)
	}

	s.rows.Add(int64(len(results)))
	metrics.RecordRowsScored(len(results))
	st.telemetry.Count(ctx, "rows_scored", int64(len(results)))
	st.telemetry.Timing(ctx, "prediction", elapsed)
	return model.Response{Results: results}, nil
}

// checkResults enforces one finite prediction per row.
func checkResults(results []float64, rows int) error {
	if len(results) != rows {
		return fmt.Errorf("%w: got %d results for %d rows", ErrResultCount, len(results), rows)
	}
	for i, y := range results {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return fmt.Errorf("%w: row %d", scoring.ErrNonFinitePrediction, i)
		}
	}
	return nil
}

// State reports the lifecycle state.
func (s *Service) State() types.State {
	if s.ready.Load() == nil {
		return types.StateUninitialized
	}
	return types.StateReady
}

// ModelInfo returns the loaded model identity, if any.
func (s *Service) ModelInfo() (types.ModelInfo, bool) {
	st := s.ready.Load()
	if st == nil {
		return types.ModelInfo{}, false
	}
	return st.info, true
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	stats := map[string]interface{}{
		"state":          string(s.State()),
		"uptimeSeconds":  int64(time.Since(s.createdAt).Seconds()),
		"requests":       s.requests.Load(),
		"rowsScored":     s.rows.Load(),
		"failedRequests": s.failures.Load(),
		"cacheSize":      s.cacheSize,
	}
	if st := s.ready.Load(); st != nil {
		stats["model"] = st.info
		stats["loadedAt"] = st.loadedAt.UTC().Format(time.RFC3339)
	}
	return stats
}

// Close releases the predictor. The service is Uninitialized afterwards.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.ready.Swap(nil)
	if st == nil {
		return nil
	}
	st.logger.Info(context.Background(), "releasing model")
	return st.predictor.Close()
}
