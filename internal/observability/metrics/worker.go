package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	stageTotal      *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orc",
			Subsystem: "worker",
			Name:      "documents_processed_total",
			Help:      "Total documents processed by the worker, by outcome.",
		},
		[]string{"service", "outcome"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "orc",
			Subsystem: "worker",
			Name:      "document_process_duration_seconds",
			Help:      "Per-document processing duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "outcome"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "orc",
			Subsystem: "worker",
			Name:      "documents_in_flight",
			Help:      "Documents currently being processed.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	stageTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orc",
			Subsystem: "pipeline",
			Name:      "stage_total",
			Help:      "Total stage executions by stage and outcome.",
		},
		[]string{"service", "stage", "outcome"},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "orc",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Stage duration in seconds, model call included.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "stage"},
	)

	registry.MustRegister(
		processTotal,
		processDuration,
		processInFlight,
		stageTotal,
		stageDuration,
	)

	return &WorkerMetrics{
		registry:        registry,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		stageTotal:      stageTotal,
		stageDuration:   stageDuration,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) ProcessStarted() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) ProcessFinished(service, outcome string, duration time.Duration) {
	m.processInFlight.Dec()
	m.processTotal.WithLabelValues(service, outcome).Inc()
	m.processDuration.WithLabelValues(service, outcome).Observe(duration.Seconds())
}

// ObserveStage implements the orchestrator's stage observer.
func (m *WorkerMetrics) ObserveStage(stage, outcome string, duration time.Duration) {
	m.stageTotal.WithLabelValues("worker", stage, outcome).Inc()
	m.stageDuration.WithLabelValues("worker", stage).Observe(duration.Seconds())
}
