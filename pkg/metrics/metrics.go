package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registry holds every collector exposed on /api/metrics
	Registry = prometheus.NewRegistry()

	factory = promauto.With(Registry)

	// Custom histogram buckets optimized for API response times ranging from milliseconds to 30+ seconds
	// The upper buckets cover slow inference calls made by the llm scorer
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	// HTTP Metrics
	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Business Metrics
	IdeaEvaluations = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appraiser_idea_evaluations_total",
			Help: "Total number of idea evaluation attempts",
		},
		[]string{"status"},
	)

	IdeaGrades = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appraiser_idea_grades_total",
			Help: "Grades handed out by the evaluation endpoint",
		},
		[]string{"grade"},
	)

	// Scorer Metrics
	ScorerDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "appraiser_scorer_duration_seconds",
			Help:    "Time spent producing scores",
			Buckets: CustomAPIBuckets,
		},
		[]string{"scorer", "status"},
	)

	// Inference Client Metrics (Hugging Face)
	InferenceRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inference_client_operation_duration_seconds",
			Help:    "Inference API operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	InferenceRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inference_client_operation_total",
			Help: "Total number of inference API operations",
		},
		[]string{"operation", "status"},
	)

	ScorerFallbacks = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appraiser_scorer_fallbacks_total",
			Help: "Times the llm scorer fell back to the heuristic scorer",
		},
		[]string{"reason"},
	)

	CircuitBreakerState = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"breaker"},
	)

	// Cache Metrics
	CacheHits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	CacheSize = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Number of entries in cache",
		},
		[]string{"cache_name"},
	)

	// Infrastructure Metrics
	GoRoutines = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// RecordInfrastructureMetrics collects infrastructure metrics periodically until stop is closed
func RecordInfrastructureMetrics(stop <-chan struct{}) {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				var m runtime.MemStats
				runtime.ReadMemStats(&m)

				GoRoutines.Set(float64(runtime.NumGoroutine()))
				HeapAlloc.Set(float64(m.HeapAlloc))
			}
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
