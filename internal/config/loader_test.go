package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/housescore/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":5001")
				convey.So(cfg.ModelFile, convey.ShouldEqual, "model.pkl")
				convey.So(cfg.ModelDir, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When the hosting platform sets AZUREML_MODEL_DIR", func() {
			_ = os.Setenv("AZUREML_MODEL_DIR", "/var/azureml-app/house-prices/1")
			_ = os.Setenv("AZUREML_ENTRY_SCRIPT", "score.py")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it becomes model_dir and other AZUREML_ vars are ignored", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.ModelDir, convey.ShouldEqual, "/var/azureml-app/house-prices/1")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SCORER_ADDR", ":8080")
			_ = os.Setenv("SCORER_LOG_FORMAT", "json")
			_ = os.Setenv("SCORER_MODEL_FILE", "model.json")
			_ = os.Setenv("SCORER_BRIDGE_COMMAND", "python3 -m scorer_bridge")
			_ = os.Setenv("SCORER_CACHE_SIZE", "5000")
			_ = os.Setenv("SCORER_CACHE_TTL", "5m")
			_ = os.Setenv("SCORER_TELEMETRY_ADDR", "127.0.0.1:8125")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.ModelFile, convey.ShouldEqual, "model.json")
				convey.So(cfg.BridgeCommand, convey.ShouldEqual, "python3 -m scorer_bridge")
				convey.So(cfg.CacheSize, convey.ShouldEqual, int64(5000))
				convey.So(cfg.CacheTTL, convey.ShouldEqual, 5*time.Minute)
				convey.So(cfg.TelemetryAddr, convey.ShouldEqual, "127.0.0.1:8125")
			})
		})

		convey.Convey("When SCORER_MODEL_DIR and AZUREML_MODEL_DIR are both set", func() {
			_ = os.Setenv("AZUREML_MODEL_DIR", "/platform")
			_ = os.Setenv("SCORER_MODEL_DIR", "/override")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the SCORER_ variable wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.ModelDir, convey.ShouldEqual, "/override")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
model_dir: /models/house-prices/4
cache_size: 200
max_body_bytes: 1024
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SCORER_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.ModelDir, convey.ShouldEqual, "/models/house-prices/4")
				convey.So(cfg.CacheSize, convey.ShouldEqual, int64(200))
				convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, int64(1024))
				convey.So(cfg.ModelFile, convey.ShouldEqual, "model.pkl") // From defaults
			})
		})

		convey.Convey("When loading config with file, platform and environment variables", func() {
			yamlContent := `
addr: ":9090"
model_dir: /from-file
cache_size: 200
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SCORER_CONFIG", tmpFile)
			_ = os.Setenv("AZUREML_MODEL_DIR", "/from-platform")
			_ = os.Setenv("SCORER_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then later layers override earlier ones", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")              // Overridden by env
				convey.So(cfg.ModelDir, convey.ShouldEqual, "/from-platform") // Overridden by platform
				convey.So(cfg.CacheSize, convey.ShouldEqual, int64(200))      // From file
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SCORER_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("SCORER_CONFIG", "/nonexistent/scorer.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a value cannot be decoded", func() {
			_ = os.Setenv("SCORER_CACHE_SIZE", "lots")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the loaded values are invalid", func() {
			_ = os.Setenv("SCORER_CACHE_SIZE", "-10")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation rejects them", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with various addr formats", func() {
			_ = os.Setenv("SCORER_ADDR", "[::1]:8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should keep the address verbatim", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, "[::1]:8080")
			})
		})
	})
}

func clearConfigEnvVars() {
	envVars := []string{
		"SCORER_CONFIG",
		"SCORER_ADDR",
		"SCORER_LOG_FORMAT",
		"SCORER_MODEL_DIR",
		"SCORER_MODEL_FILE",
		"SCORER_BRIDGE_COMMAND",
		"SCORER_CACHE_SIZE",
		"SCORER_CACHE_TTL",
		"SCORER_TELEMETRY_ADDR",
		"AZUREML_MODEL_DIR",
		"AZUREML_ENTRY_SCRIPT",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "scorer-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
