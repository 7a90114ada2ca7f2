// Package config defines scorer configuration and its layered loading.
//
// Conventions:
// - New builds a Config with defaults; Load layers file and environment on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`
	// Addr configures the HTTP listen address, e.g. ":5001".
	Addr string `koanf:"addr"`

	// ModelDir is the directory holding the model artifact. Filled from
	// AZUREML_MODEL_DIR when set.
	ModelDir string `koanf:"model_dir"`
	// ModelFile is the artifact file name inside ModelDir.
	ModelFile string `koanf:"model_file"`
	// BridgeCommand runs pickle artifacts out of process, e.g. "python3 -m scorer_bridge".
	BridgeCommand string `koanf:"bridge_command"`

	// CacheSize bounds the prediction cache in rows; 0 disables it.
	CacheSize int64 `koanf:"cache_size"`
	// CacheTTL expires cached predictions; 0 keeps them until evicted.
	CacheTTL time.Duration `koanf:"cache_ttl"`
	// MaxBodyBytes caps the size of a score request body.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// TelemetryAddr is the statsd collector address; empty disables telemetry.
	TelemetryAddr string `koanf:"telemetry_addr"`
	// TelemetryNamespace prefixes telemetry metric names.
	TelemetryNamespace string `koanf:"telemetry_namespace"`
	// ServiceName tags logs and telemetry.
	ServiceName string `koanf:"service_name"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":5001",
		ModelFile:          "model.pkl",
		CacheSize:          0,
		MaxBodyBytes:       10 << 20,
		TelemetryNamespace: "housescore.",
		ServiceName:        "house-price-scorer",
	}
}
