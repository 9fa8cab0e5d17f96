package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Business metrics
	snapshotsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "health_snapshots_recorded_total",
			Help: "Total number of health snapshots recorded",
		},
		[]string{"source"},
	)

	assessmentsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_assessments_created_total",
			Help: "Total number of risk assessments created",
		},
		[]string{"level"},
	)

	alertsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_dispatched_total",
			Help: "Total number of alerts dispatched to recipients",
		},
		[]string{"type"},
	)

	fastTestsPerformed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fast_tests_performed_total",
			Help: "Total number of FAST screens performed",
		},
		[]string{"emergency"},
	)

	sharingLinksCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sharing_links_created_total",
			Help: "Total number of sharing links created",
		},
		[]string{"role"},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware creates HTTP metrics middleware
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// normalizePath normalizes URL paths for metrics to avoid cardinality explosion
func normalizePath(path string) string {
	if len(path) > 100 {
		return "/api/..."
	}
	return path
}

// --- Business metric helpers ---

// SnapshotRecorded increments the snapshot counter
func SnapshotRecorded(source string) {
	snapshotsRecorded.WithLabelValues(source).Inc()
}

// AssessmentCreated increments the assessment counter for a risk level
func AssessmentCreated(level string) {
	assessmentsCreated.WithLabelValues(level).Inc()
}

// AlertDispatched increments the alert counter for an alert type
func AlertDispatched(alertType string) {
	alertsDispatched.WithLabelValues(alertType).Inc()
}

// FASTTestPerformed increments the FAST screen counter
func FASTTestPerformed(emergency bool) {
	fastTestsPerformed.WithLabelValues(strconv.FormatBool(emergency)).Inc()
}

// SharingLinkCreated increments the sharing link counter for a role
func SharingLinkCreated(role string) {
	sharingLinksCreated.WithLabelValues(role).Inc()
}
