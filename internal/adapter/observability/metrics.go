package observability

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	ProviderCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_calls_total",
			Help: "Total number of provider invocations by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)
	ProviderCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_call_duration_seconds",
			Help:    "Provider invocation duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 1800},
		},
		[]string{"provider"},
	)
	ProviderTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_tokens_total",
			Help: "Tokens consumed by provider and direction",
		},
		[]string{"provider", "direction"},
	)
	BreakerTripsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_trips_total",
			Help: "Circuit breaker trips by provider",
		},
		[]string{"provider"},
	)

	TasksStartedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasks_started_total",
			Help: "Tasks dispatched to a provider",
		},
		[]string{"type"},
	)
	TasksCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasks_completed_total",
			Help: "Tasks that passed validation",
		},
		[]string{"type"},
	)
	TasksBlockedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasks_blocked_total",
			Help: "Tasks moved to the blocked list",
		},
		[]string{"type"},
	)
	TasksRetriedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasks_retried_total",
			Help: "Retry dispatches by task type",
		},
		[]string{"type"},
	)

	IterationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "control_loop_iterations_total",
			Help: "Completed control loop iterations",
		},
	)
	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "task_queue_depth",
			Help: "Tasks currently waiting in the queue",
		},
	)
	ValidationResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validation_results_total",
			Help: "Validation outcomes by final stage and result",
		},
		[]string{"stage", "outcome"},
	)
	ValidationConfidence = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validation_confidence_total",
			Help: "Validation reports by confidence level",
		},
		[]string{"confidence"},
	)
)

func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(ProviderCallsTotal)
	prometheus.MustRegister(ProviderCallDuration)
	prometheus.MustRegister(ProviderTokensTotal)
	prometheus.MustRegister(BreakerTripsTotal)
	prometheus.MustRegister(TasksStartedTotal)
	prometheus.MustRegister(TasksCompletedTotal)
	prometheus.MustRegister(TasksBlockedTotal)
	prometheus.MustRegister(TasksRetriedTotal)
	prometheus.MustRegister(IterationsTotal)
	prometheus.MustRegister(QueueDepth)
	prometheus.MustRegister(ValidationResultsTotal)
	prometheus.MustRegister(ValidationConfidence)
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			// fallback when route pattern is unavailable
			route = r.URL.Path
		}
		method := r.Method
		status := ww.Status()
		HTTPRequestsTotal.WithLabelValues(route, method, http.StatusText(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, method).Observe(dur)
	})
}

// RecordProviderCall tracks one dispatch round trip.
func RecordProviderCall(provider, outcome string, duration time.Duration, inputTokens, outputTokens int) {
	ProviderCallsTotal.WithLabelValues(provider, outcome).Inc()
	ProviderCallDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if inputTokens > 0 {
		ProviderTokensTotal.WithLabelValues(provider, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		ProviderTokensTotal.WithLabelValues(provider, "output").Add(float64(outputTokens))
	}
}

func StartTask(taskType string) {
	TasksStartedTotal.WithLabelValues(taskType).Inc()
}

func CompleteTask(taskType string) {
	TasksCompletedTotal.WithLabelValues(taskType).Inc()
}

func BlockTask(taskType string) {
	TasksBlockedTotal.WithLabelValues(taskType).Inc()
}

func RetryTask(taskType string) {
	TasksRetriedTotal.WithLabelValues(taskType).Inc()
}

func TripBreaker(provider string) {
	BreakerTripsTotal.WithLabelValues(provider).Inc()
}

// ObserveValidation records the terminal stage and outcome of one report.
func ObserveValidation(stage string, passed bool, confidence string) {
	outcome := "fail"
	if passed {
		outcome = "pass"
	}
	ValidationResultsTotal.WithLabelValues(stage, outcome).Inc()
	if confidence != "" {
		ValidationConfidence.WithLabelValues(confidence).Inc()
	}
}
