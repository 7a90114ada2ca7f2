package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

// gathered returns the summed counter/gauge value, or histogram sample count,
// of a metric family on the custom registry.
func gathered(name string) float64 {
	families, err := GetRegistry().Gather()
	So(err, ShouldBeNil)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			}
		}
		return total
	}
	return 0
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created and registered", func() {
				So(manager, ShouldNotBeNil)
				manager.rowsScored.Add(3)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.rowsScored.Inc()

			Convey("Then names and labels follow the options", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, mf := range families {
					if mf.GetName() == "test_unit_rows_scored_total" {
						found = true
						So(mf.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 10})
			})
		})

		Convey("When options receive empty values", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "housescore")
				So(manager.subsystem, ShouldEqual, "scorer")
				So(manager.histogramBuckets, ShouldNotBeEmpty)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording scoring metrics", func() {
			before := gathered("housescore_scorer_rows_scored_total")
			RecordRowsScored(4)
			RecordRowsScored(0)
			RecordScoreRequest(OutcomeOK)
			RecordPredictionLatency(1.5)

			Convey("Then counters move by the recorded amounts", func() {
				So(gathered("housescore_scorer_rows_scored_total"), ShouldEqual, before+4)
				So(gathered("housescore_scorer_score_requests_total"), ShouldBeGreaterThanOrEqualTo, float64(1))
				So(gathered("housescore_scorer_prediction_latency_milliseconds"), ShouldBeGreaterThanOrEqualTo, float64(1))
			})
		})

		Convey("When recording errors", func() {
			validation := gathered("housescore_scorer_validation_errors_total")
			prediction := gathered("housescore_scorer_prediction_errors_total")
			RecordValidationError()
			RecordPredictionError()
			RecordErrorByEndpoint("/score", "POST", "invalid_request")

			Convey("Then each error counter increments", func() {
				So(gathered("housescore_scorer_validation_errors_total"), ShouldEqual, validation+1)
				So(gathered("housescore_scorer_prediction_errors_total"), ShouldEqual, prediction+1)
				So(gathered("housescore_scorer_errors_by_endpoint_total"), ShouldBeGreaterThanOrEqualTo, float64(1))
			})
		})

		Convey("When publishing model info twice", func() {
			RecordModelLoad(12)
			SetModelInfo("house-prices", "1", "linear")
			SetModelInfo("house-prices", "2", "linear")

			Convey("Then only the latest identity is exported", func() {
				So(gathered("housescore_scorer_model_info"), ShouldEqual, float64(1))
				So(gathered("housescore_scorer_model_ready"), ShouldEqual, float64(1))
				So(gathered("housescore_scorer_model_load_duration_milliseconds"), ShouldBeGreaterThanOrEqualTo, float64(1))
			})
		})

		Convey("When recording cache traffic", func() {
			hits := gathered("housescore_scorer_cache_hits_total")
			misses := gathered("housescore_scorer_cache_misses_total")
			RecordCacheHits(2)
			RecordCacheMisses(3)
			RecordCacheMisses(-1)

			Convey("Then hits and misses are counted separately", func() {
				So(gathered("housescore_scorer_cache_hits_total"), ShouldEqual, hits+2)
				So(gathered("housescore_scorer_cache_misses_total"), ShouldEqual, misses+3)
			})
		})

		Convey("When recording HTTP and system metrics", func() {
			So(func() {
				RecordHTTPRequest("/score", "POST", "200")
				RecordHTTPRequestDuration("/score", "POST", "200", 3.2)
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.4)
			}, ShouldNotPanic)

			Convey("Then the gauges hold the last values", func() {
				So(gathered("housescore_scorer_system_memory_usage_bytes"), ShouldEqual, float64(1<<20))
				So(gathered("housescore_scorer_system_goroutine_count"), ShouldEqual, float64(12))
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		before := gathered("housescore_scorer_rows_scored_total")

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					RecordRowsScored(1)
					RecordHTTPRequest("/score", "POST", "200")
				}
			}()
		}
		wg.Wait()

		Convey("Then no update is lost", func() {
			So(gathered("housescore_scorer_rows_scored_total"), ShouldEqual, before+800)
		})
	})
}
