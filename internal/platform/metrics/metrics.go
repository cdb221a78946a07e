// Package metrics exposes plate recognition metrics in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"plate_reader/internal/feature/plate/domain/entity"
	"plate_reader/internal/feature/plate/usecase"
)

// Metrics holds all application collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	detectionDuration *prometheus.HistogramVec
	detectionErrors   *prometheus.CounterVec
	recognitions      *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
}

var _ usecase.Metrics = (*Metrics)(nil)

// New creates a Metrics instance with Go runtime and process collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		detectionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "plate_detection_duration_seconds",
			Help:    "Time spent in the character detector",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"backend"}),
		detectionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plate_detection_errors_total",
			Help: "Detector calls that returned an error",
		}, []string{"backend"}),
		recognitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plate_recognitions_total",
			Help: "Recognition requests by outcome",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"method", "route", "code"}),
	}

	m.registry.MustRegister(
		m.detectionDuration,
		m.detectionErrors,
		m.recognitions,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveDetection records one detector call.
func (m *Metrics) ObserveDetection(backend string, elapsed time.Duration, err error) {
	m.detectionDuration.WithLabelValues(backend).Observe(elapsed.Seconds())
	if err != nil {
		m.detectionErrors.WithLabelValues(backend).Inc()
	}
}

// ObserveOutcome counts one finished recognition.
func (m *Metrics) ObserveOutcome(outcome entity.Outcome) {
	m.recognitions.WithLabelValues(string(outcome)).Inc()
}

// ObserveRequest counts one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, code int) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
