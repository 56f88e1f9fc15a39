package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServerMetrics holds the API server's Prometheus instruments on a
// private registry so tests can construct them without collisions.
type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	searchTotal       *prometheus.CounterVec
	searchEmptyTotal  *prometheus.CounterVec
	searchResultCount *prometheus.HistogramVec
	searchDuration    *prometheus.HistogramVec
	exportRowsTotal   *prometheus.CounterVec
	rateLimitedTotal  *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caselaw",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "caselaw",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "caselaw",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	searchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caselaw",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total completed search requests by status.",
		},
		[]string{"service", "status"},
	)
	searchEmptyTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caselaw",
			Subsystem: "search",
			Name:      "empty_results_total",
			Help:      "Total searches that matched no cases.",
		},
		[]string{"service"},
	)
	searchResultCount := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "caselaw",
			Subsystem: "search",
			Name:      "result_count",
			Help:      "Distribution of total matches per search.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service"},
	)
	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "caselaw",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	exportRowsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caselaw",
			Subsystem: "export",
			Name:      "rows_total",
			Help:      "Total exported rows by format.",
		},
		[]string{"service", "format"},
	)
	rateLimitedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caselaw",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total requests rejected by the rate limiter.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		searchTotal,
		searchEmptyTotal,
		searchResultCount,
		searchDuration,
		exportRowsTotal,
		rateLimitedTotal,
	)

	return &HTTPServerMetrics{
		registry:          registry,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		searchTotal:       searchTotal,
		searchEmptyTotal:  searchEmptyTotal,
		searchResultCount: searchResultCount,
		searchDuration:    searchDuration,
		exportRowsTotal:   exportRowsTotal,
		rateLimitedTotal:  rateLimitedTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses case ids so the path label stays low-cardinality.
func normalizePath(path string) string {
	if strings.HasPrefix(path, "/api/v1/cases/") {
		if strings.HasSuffix(path, "/citations") {
			return "/api/v1/cases/{case_id}/citations"
		}
		return "/api/v1/cases/{case_id}"
	}
	return path
}

func (m *HTTPServerMetrics) RecordSearch(service string, total int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.searchTotal.WithLabelValues(service, status).Inc()
	if err != nil {
		return
	}
	m.searchResultCount.WithLabelValues(service).Observe(float64(total))
	m.searchDuration.WithLabelValues(service).Observe(duration.Seconds())
	if total == 0 {
		m.searchEmptyTotal.WithLabelValues(service).Inc()
	}
}

func (m *HTTPServerMetrics) RecordExport(service, format string, rows int) {
	if rows <= 0 {
		return
	}
	m.exportRowsTotal.WithLabelValues(service, format).Add(float64(rows))
}

func (m *HTTPServerMetrics) RecordRateLimited(service string) {
	m.rateLimitedTotal.WithLabelValues(service).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}
