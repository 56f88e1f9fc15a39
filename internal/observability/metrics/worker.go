package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics instruments the citation-extraction worker.
type WorkerMetrics struct {
	registry *prometheus.Registry

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	citationsFound  *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caselaw",
			Subsystem: "worker",
			Name:      "case_process_total",
			Help:      "Total processed cases by status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "caselaw",
			Subsystem: "worker",
			Name:      "case_process_duration_seconds",
			Help:      "Case processing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "caselaw",
			Subsystem: "worker",
			Name:      "case_process_in_flight",
			Help:      "Number of in-flight case processing tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	citationsFound := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "caselaw",
			Subsystem: "worker",
			Name:      "citations_found",
			Help:      "Distribution of extracted citations per case.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		},
		[]string{"service"},
	)

	registry.MustRegister(processTotal, processDuration, processInFlight, citationsFound)

	return &WorkerMetrics{
		registry:        registry,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		citationsFound:  citationsFound,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartCase() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishCase(service string, duration time.Duration, citations int, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.processTotal.WithLabelValues(service, status).Inc()
	m.processDuration.WithLabelValues(service, status).Observe(duration.Seconds())
	if err == nil {
		m.citationsFound.WithLabelValues(service).Observe(float64(citations))
	}
}
