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

	retrievalRequestsTotal  *prometheus.CounterVec
	retrievalHitTotal       *prometheus.CounterVec
	retrievalNoContextTotal *prometheus.CounterVec
	retrievalMergedDocs     *prometheus.HistogramVec
	retrievalDuration       *prometheus.HistogramVec

	quizBatchesTotal   *prometheus.CounterVec
	quizQuestionsTotal *prometheus.CounterVec
	quizDuration       *prometheus.HistogramVec

	gradeTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "exg",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "exg",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "exg",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	retrievalRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "exg",
			Subsystem: "retrieval",
			Name:      "requests_total",
			Help:      "Total successful retrieval-backed requests.",
		},
		[]string{"service", "endpoint"},
	)
	retrievalHitTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "exg",
			Subsystem: "retrieval",
			Name:      "hit_total",
			Help:      "Total requests with at least one merged source document.",
		},
		[]string{"service", "endpoint"},
	)
	retrievalNoContextTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "exg",
			Subsystem: "retrieval",
			Name:      "no_context_total",
			Help:      "Total requests without merged source documents.",
		},
		[]string{"service", "endpoint"},
	)
	retrievalMergedDocs := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "exg",
			Subsystem: "retrieval",
			Name:      "merged_documents",
			Help:      "Distribution of merged source documents per request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service", "endpoint"},
	)
	retrievalDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "exg",
			Subsystem: "retrieval",
			Name:      "duration_seconds",
			Help:      "Retrieval-backed request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	quizBatchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "exg",
			Subsystem: "quiz",
			Name:      "batches_total",
			Help:      "Total generated quiz batches by outcome.",
		},
		[]string{"service", "status"},
	)
	quizQuestionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "exg",
			Subsystem: "quiz",
			Name:      "questions_total",
			Help:      "Total generated questions by question type.",
		},
		[]string{"service", "type"},
	)
	quizDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "exg",
			Subsystem: "quiz",
			Name:      "generation_duration_seconds",
			Help:      "Quiz generation duration in seconds.",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120, 180},
		},
		[]string{"service"},
	)
	gradeTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "exg",
			Subsystem: "grade",
			Name:      "answers_total",
			Help:      "Total graded answers by match tier.",
		},
		[]string{"service", "tier"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		retrievalRequestsTotal,
		retrievalHitTotal,
		retrievalNoContextTotal,
		retrievalMergedDocs,
		retrievalDuration,
		quizBatchesTotal,
		quizQuestionsTotal,
		quizDuration,
		gradeTotal,
	)

	return &HTTPServerMetrics{
		registry:                registry,
		requestTotal:            requestTotal,
		requestDuration:         requestDuration,
		requestInFlight:         requestInFlight,
		retrievalRequestsTotal:  retrievalRequestsTotal,
		retrievalHitTotal:       retrievalHitTotal,
		retrievalNoContextTotal: retrievalNoContextTotal,
		retrievalMergedDocs:     retrievalMergedDocs,
		retrievalDuration:       retrievalDuration,
		quizBatchesTotal:        quizBatchesTotal,
		quizQuestionsTotal:      quizQuestionsTotal,
		quizDuration:            quizDuration,
		gradeTotal:              gradeTotal,
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
	case strings.HasPrefix(path, "/v1/quizzes/") && strings.HasSuffix(path, "/sources"):
		return "/v1/quizzes/{batch_id}/sources"
	case strings.HasPrefix(path, "/v1/quizzes/") && strings.HasSuffix(path, "/answers"):
		return "/v1/quizzes/{batch_id}/answers"
	case strings.HasPrefix(path, "/v1/quizzes/"):
		return "/v1/quizzes/{batch_id}"
	case strings.HasPrefix(path, "/v1/questions/") && strings.HasSuffix(path, "/bookmark"):
		return "/v1/questions/{question_id}/bookmark"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordRetrieval(service, endpoint string, sourceCount int, duration time.Duration) {
	m.retrievalRequestsTotal.WithLabelValues(service, endpoint).Inc()
	m.retrievalMergedDocs.WithLabelValues(service, endpoint).Observe(float64(sourceCount))
	m.retrievalDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())

	if sourceCount > 0 {
		m.retrievalHitTotal.WithLabelValues(service, endpoint).Inc()
		return
	}
	m.retrievalNoContextTotal.WithLabelValues(service, endpoint).Inc()
}

func (m *HTTPServerMetrics) RecordQuizBatch(service, status, questionType string, questionCount int, duration time.Duration) {
	if status == "" {
		status = "unknown"
	}
	m.quizBatchesTotal.WithLabelValues(service, status).Inc()
	if questionCount > 0 {
		m.quizQuestionsTotal.WithLabelValues(service, questionType).Add(float64(questionCount))
	}
	m.quizDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordGrade(service, tier string) {
	if tier == "" {
		tier = "unknown"
	}
	m.gradeTotal.WithLabelValues(service, tier).Inc()
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
