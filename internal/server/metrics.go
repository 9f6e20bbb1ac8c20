package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/woozymasta/aerosurf/internal/processor"
	"github.com/woozymasta/aerosurf/internal/surface"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors of the API server.
type Metrics struct {
	gatherer prometheus.Gatherer

	Requests  *prometheus.CounterVec
	Durations *prometheus.HistogramVec
	Surfaces  *prometheus.CounterVec
	Obstacles *prometheus.CounterVec
}

// NewMetrics registers the server metrics against reg, defaulting to the
// global registry when nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aerosurf_http_requests_total",
		Help: "Handled API requests by route and status code.",
	}, []string{"route", "code"}), "aerosurf_http_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aerosurf_http_request_duration_seconds",
		Help:    "API request latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	}, []string{"route"})
	if err := reg.Register(durations); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		if durations, ok = are.ExistingCollector.(*prometheus.HistogramVec); !ok {
			return nil, fmt.Errorf("collector aerosurf_http_request_duration_seconds already registered with incompatible type")
		}
	}

	surfaces, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aerosurf_surfaces_built_total",
		Help: "Surfaces constructed, by kind.",
	}, []string{"kind"}), "aerosurf_surfaces_built_total")
	if err != nil {
		return nil, err
	}

	obstacles, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aerosurf_obstacles_classified_total",
		Help: "Obstacles inside an evaluated surface, by classification.",
	}, []string{"classification"}), "aerosurf_obstacles_classified_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:  gatherer,
		Requests:  requests,
		Durations: durations,
		Surfaces:  surfaces,
		Obstacles: obstacles,
	}, nil
}

// Handler exposes the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	gatherer := m.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Instrument records count and latency of next under the route label.
func (m *Metrics) Instrument(route string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)

		m.Requests.WithLabelValues(route, strconv.Itoa(ww.statusCode)).Inc()
		m.Durations.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) surfaceBuilt(kind surface.Kind) {
	if m == nil {
		return
	}
	m.Surfaces.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) reportEvaluated(stats processor.Stats) {
	if m == nil {
		return
	}
	m.Obstacles.WithLabelValues(processor.Critical.String()).Add(float64(stats.Critical))
	m.Obstacles.WithLabelValues(processor.NotCritical.String()).Add(float64(stats.NotCritical))
	m.Obstacles.WithLabelValues(processor.Undetermined.String()).Add(float64(stats.Undetermined))
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
