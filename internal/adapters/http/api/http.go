// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/housescore/internal/domain/model"
	"github.com/okian/housescore/internal/domain/schema"
	"github.com/okian/housescore/internal/domain/types"
)

// DefaultMaxBodyBytes bounds a scoring payload when no limit is configured.
const DefaultMaxBodyBytes int64 = 10 << 20

// Scorer is what the HTTP handlers need from the scoring adapter.
type Scorer interface {
	Schema() *schema.Schema
	State() types.State
	ModelInfo() (types.ModelInfo, bool)
	Run(ctx context.Context, req model.Request) (model.Response, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	scoreHandler  *ScoreHandler
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxBodyBytes limits the size of a scoring payload.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.scoreHandler.maxBodyBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(scorer Scorer, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		scoreHandler:  NewScoreHandler(scorer),
		healthHandler: NewHealthHandler(scorer),
		statsHandler:  NewStatsHandler(statsProvider),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/score", RequestIDMiddleware(MetricsMiddleware(s.scoreHandler.HandleScore, "score")))
	mux.HandleFunc("/healthz", RequestIDMiddleware(MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")))
	mux.HandleFunc("/readyz", RequestIDMiddleware(MetricsMiddleware(s.healthHandler.HandleReady, "readyz")))
	mux.HandleFunc("/stats", RequestIDMiddleware(MetricsMiddleware(s.statsHandler.HandleStats, "stats")))
	mux.Handle("/metrics", MetricsHandler())
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
