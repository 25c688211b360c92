package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	pipelineRunsTotal   *prometheus.CounterVec
	pipelineDuration    *prometheus.HistogramVec
	stageTotal          *prometheus.CounterVec
	stageDuration       *prometheus.HistogramVec
	decisionsTotal      *prometheus.CounterVec
	emailDraftsTotal    *prometheus.CounterVec
	reviewRequiredTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orc",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "orc",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "orc",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	pipelineRunsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orc",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total pipeline runs by outcome.",
		},
		[]string{"service", "outcome"},
	)
	pipelineDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "orc",
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Whole-pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "outcome"},
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
	decisionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orc",
			Subsystem: "review",
			Name:      "decisions_total",
			Help:      "Total human decisions by action.",
		},
		[]string{"service", "action"},
	)
	emailDraftsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orc",
			Subsystem: "email",
			Name:      "drafts_total",
			Help:      "Total generated email drafts by type.",
		},
		[]string{"service", "type"},
	)
	reviewRequiredTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orc",
			Subsystem: "review",
			Name:      "human_review_required_total",
			Help:      "Total completed runs that required human review.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		pipelineRunsTotal,
		pipelineDuration,
		stageTotal,
		stageDuration,
		decisionsTotal,
		emailDraftsTotal,
		reviewRequiredTotal,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		pipelineRunsTotal:   pipelineRunsTotal,
		pipelineDuration:    pipelineDuration,
		stageTotal:          stageTotal,
		stageDuration:       stageDuration,
		decisionsTotal:      decisionsTotal,
		emailDraftsTotal:    emailDraftsTotal,
		reviewRequiredTotal: reviewRequiredTotal,
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

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	case strings.HasPrefix(path, "/v1/drafts/"):
		return "/v1/drafts/{draft_id}"
	default:
		return path
	}
}

// RecordPipelineRun tracks one whole orchestration request.
func (m *HTTPServerMetrics) RecordPipelineRun(service, outcome string, duration time.Duration, reviewRequired bool) {
	m.pipelineRunsTotal.WithLabelValues(service, outcome).Inc()
	m.pipelineDuration.WithLabelValues(service, outcome).Observe(duration.Seconds())
	if reviewRequired {
		m.reviewRequiredTotal.WithLabelValues(service).Inc()
	}
}

// ObserveStage implements the orchestrator's stage observer.
func (m *HTTPServerMetrics) ObserveStage(stage, outcome string, duration time.Duration) {
	m.stageTotal.WithLabelValues("api", stage, outcome).Inc()
	m.stageDuration.WithLabelValues("api", stage).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordDecision(service, action string) {
	m.decisionsTotal.WithLabelValues(service, action).Inc()
}

func (m *HTTPServerMetrics) RecordEmailDraft(service, emailType string) {
	m.emailDraftsTotal.WithLabelValues(service, emailType).Inc()
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

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
