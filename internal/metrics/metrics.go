// Package metrics exposes Prometheus collectors for HTTP traffic and the
// generation pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stylegen/internal/imagegen"
)

const namespace = "stylegen"

// Metrics owns a registry so tests can build isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	generationsTotal   *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	backendTotal       *prometheus.CounterVec
	backendDuration    *prometheus.HistogramVec
	uploadsTotal       *prometheus.CounterVec
	uploadBytes        prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"method", "route"}),
		generationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "total",
			Help:      "Completed generation requests by mode, style and outcome",
		}, []string{"mode", "style", "status"}),
		generationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "End to end generation duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}, []string{"mode", "style"}),
		backendTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "runs_total",
			Help:      "Backend pipeline invocations by family and outcome",
		}, []string{"family", "status"}),
		backendDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "run_duration_seconds",
			Help:      "Backend pipeline duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}, []string{"family"}),
		uploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "uploads",
			Name:      "total",
			Help:      "Upload attempts by detected content type and outcome",
		}, []string{"content_type", "status"}),
		uploadBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "uploads",
			Name:      "bytes_total",
			Help:      "Total bytes accepted by the upload endpoint",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveGeneration(mode, styleID, status string, elapsed time.Duration) {
	m.generationsTotal.WithLabelValues(mode, styleID, status).Inc()
	m.generationDuration.WithLabelValues(mode, styleID).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveBackend(family, status string, elapsed time.Duration) {
	m.backendTotal.WithLabelValues(family, status).Inc()
	m.backendDuration.WithLabelValues(family).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveUpload(contentType, status string, size int64) {
	m.uploadsTotal.WithLabelValues(contentType, status).Inc()
	if status == "ok" && size > 0 {
		m.uploadBytes.Add(float64(size))
	}
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

var _ imagegen.Recorder = (*Metrics)(nil)
