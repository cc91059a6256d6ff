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

	analysesTotal        *prometheus.CounterVec
	analysisDuration     *prometheus.HistogramVec
	requirementsAnalyzed *prometheus.HistogramVec
	classificationsTotal *prometheus.CounterVec
	planMatchesTotal     *prometheus.CounterVec
	exportsTotal         *prometheus.CounterVec
	domainDetectTotal    *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qmap",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qmap",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "qmap",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	analysesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qmap",
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Total completed analyses by status.",
		},
		[]string{"service", "status"},
	)
	analysisDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qmap",
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Full analysis pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	requirementsAnalyzed := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qmap",
			Subsystem: "analysis",
			Name:      "requirements_per_run",
			Help:      "Distribution of classified requirements per analysis.",
			Buckets:   []float64{0, 5, 10, 25, 50, 100, 200, 500, 1000},
		},
		[]string{"service"},
	)
	classificationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qmap",
			Subsystem: "analysis",
			Name:      "classifications_total",
			Help:      "Total classified requirements by quality category.",
		},
		[]string{"service", "category"},
	)
	planMatchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qmap",
			Subsystem: "plan",
			Name:      "matches_total",
			Help:      "Total quality plan matches by coverage strength.",
		},
		[]string{"service", "strength"},
	)
	exportsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qmap",
			Subsystem: "report",
			Name:      "exports_total",
			Help:      "Total report exports by status.",
		},
		[]string{"service", "status"},
	)
	domainDetectTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qmap",
			Subsystem: "analysis",
			Name:      "domain_detect_total",
			Help:      "Total domain detections by source.",
		},
		[]string{"service", "source"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		analysesTotal,
		analysisDuration,
		requirementsAnalyzed,
		classificationsTotal,
		planMatchesTotal,
		exportsTotal,
		domainDetectTotal,
	)

	return &HTTPServerMetrics{
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		analysesTotal:        analysesTotal,
		analysisDuration:     analysisDuration,
		requirementsAnalyzed: requirementsAnalyzed,
		classificationsTotal: classificationsTotal,
		planMatchesTotal:     planMatchesTotal,
		exportsTotal:         exportsTotal,
		domainDetectTotal:    domainDetectTotal,
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
	case strings.HasPrefix(path, "/v1/analyses/"):
		rest := strings.TrimPrefix(path, "/v1/analyses/")
		switch {
		case strings.HasSuffix(rest, "/plan"):
			return "/v1/analyses/{analysis_id}/plan"
		case strings.HasSuffix(rest, "/report.xlsx"):
			return "/v1/analyses/{analysis_id}/report.xlsx"
		default:
			return "/v1/analyses/{analysis_id}"
		}
	case strings.HasPrefix(path, "/v1/uploads/"):
		return "/v1/uploads/{upload_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordAnalysis(service, status string, requirements int, duration time.Duration) {
	if status == "" {
		status = "unknown"
	}
	m.analysesTotal.WithLabelValues(service, status).Inc()
	m.analysisDuration.WithLabelValues(service).Observe(duration.Seconds())
	if requirements >= 0 {
		m.requirementsAnalyzed.WithLabelValues(service).Observe(float64(requirements))
	}
}

func (m *HTTPServerMetrics) RecordClassification(service, category string, count int) {
	if count <= 0 {
		return
	}
	m.classificationsTotal.WithLabelValues(service, category).Add(float64(count))
}

func (m *HTTPServerMetrics) RecordPlanMatch(service, strength string) {
	if strength == "" {
		strength = "unknown"
	}
	m.planMatchesTotal.WithLabelValues(service, strength).Inc()
}

func (m *HTTPServerMetrics) RecordExport(service, status string) {
	m.exportsTotal.WithLabelValues(service, status).Inc()
}

func (m *HTTPServerMetrics) RecordDomainDetection(service, source string) {
	if source == "" {
		source = "unknown"
	}
	m.domainDetectTotal.WithLabelValues(service, source).Inc()
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
