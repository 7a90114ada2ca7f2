package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	service "github.com/okian/housescore/internal/app"
	"github.com/okian/housescore/internal/config"
	"github.com/okian/housescore/pkg/logger"
	"github.com/okian/housescore/pkg/metrics"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func writeArtifact(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "house-prices", "2")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	doc := `{"kind": "linear", "intercept": 50000, "coefficients": {"GrLivArea": 100}}`
	if err := os.WriteFile(filepath.Join(dir, "model.json"), []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return dir
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		ctx := context.Background()

		convey.Convey("When the platform provides the model directory", func() {
			dir := writeArtifact(t)
			_ = os.Setenv("AZUREML_MODEL_DIR", dir)
			_ = os.Setenv("SCORER_MODEL_FILE", "model.json")
			_ = os.Setenv("SCORER_MAX_BODY_BYTES", "4096")
			defer func() {
				_ = os.Unsetenv("AZUREML_MODEL_DIR")
				_ = os.Unsetenv("SCORER_MODEL_FILE")
				_ = os.Unsetenv("SCORER_MAX_BODY_BYTES")
			}()

			cfg, err := config.Load(ctx)
			convey.So(err, convey.ShouldBeNil)

			svc := service.New(
				service.WithModelDir(cfg.ModelDir),
				service.WithModelFile(cfg.ModelFile),
				service.WithCacheSize(cfg.CacheSize),
			)
			convey.So(svc.Init(ctx), convey.ShouldBeNil)
			defer func() { _ = svc.Close() }()

			mux := newMux(ctx, svc, cfg)
			get := func(path string) *httptest.ResponseRecorder {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				return w
			}

			convey.Convey("Then scoring works end to end", func() {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/score",
					strings.NewReader(`{"Inputs": {"data": [{"Id": 1, "GrLivArea": 1500}, {"Id": 2}]}, "GlobalParameters": 1.0}`)))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(strings.TrimSpace(w.Body.String()), convey.ShouldEqual, `{"Results":[200000,50000]}`)
				convey.So(w.Header().Get("x-ms-request-id"), convey.ShouldNotBeEmpty)
			})

			convey.Convey("Then the configured body limit applies", func() {
				big := `{"Inputs": {"data": [` + strings.Repeat(`{"Id": 1},`, 500) + `{"Id": 1}]}}`
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/score", strings.NewReader(big)))
				convey.So(w.Code, convey.ShouldEqual, http.StatusRequestEntityTooLarge)
			})

			convey.Convey("Then every supporting route answers", func() {
				convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get("/readyz").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get("/stats").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get("/metrics").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get("/swagger.json").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get("/").Body.String(), convey.ShouldContainSubstring, "house-prices")
			})
		})

		convey.Convey("When updating system metrics", func() {
			updateSystemMetrics()

			convey.Convey("Then the gauges are exported", func() {
				families, err := metrics.GetRegistry().Gather()
				convey.So(err, convey.ShouldBeNil)

				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				convey.So(names, convey.ShouldContain, "housescore_scorer_system_goroutine_count")
				convey.So(names, convey.ShouldContain, "housescore_scorer_system_memory_usage_bytes")
			})
		})

		convey.Convey("When the signal context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				close(done)
			}()
			cancel()

			convey.Convey("Then the updater stops", func() {
				<-done
				convey.So(ctx.Err(), convey.ShouldNotBeNil)
			})
		})
	})
}
