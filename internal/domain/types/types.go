// Package types contains common types used across the application
package types

// State is the lifecycle state of the scoring adapter.
type State string

// Lifecycle states. Ready is terminal until the process exits.
const (
	StateUninitialized State = "uninitialized"
	StateReady         State = "ready"
)

// ModelInfo describes the loaded model artifact
type ModelInfo struct {
	Name      string `json:"model_name"`
	Version   string `json:"model_version"`
	Path      string `json:"model_path"`
	Format    string `json:"format"`
	Predictor string `json:"predictor"`
}
