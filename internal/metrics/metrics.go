// Package metrics exposes Prometheus metrics for the board service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "notrello"

// Manager owns every metric of the service on its own registry.
type Manager struct {
	namespace string
	buckets   []float64
	goMetrics bool
	registry  *prometheus.Registry

	eventsParsed  prometheus.Counter
	cardsImported prometheus.Counter
	cardsMoved    prometheus.Counter
	registrations prometheus.Counter

	cardsStored prometheus.Gauge
	usersTotal  prometheus.Gauge
	lastPurged  prometheus.Gauge

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Option configures a Manager.
type Option func(*Manager)

// WithNamespace replaces the "notrello" metric prefix.
func WithNamespace(ns string) Option {
	return func(m *Manager) { m.namespace = ns }
}

// WithBuckets sets the request duration histogram buckets, in seconds.
func WithBuckets(b []float64) Option {
	return func(m *Manager) { m.buckets = b }
}

// WithGoCollectors adds the Go runtime and process collectors.
func WithGoCollectors() Option {
	return func(m *Manager) { m.goMetrics = true }
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: defaultNamespace,
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.init()
	return m
}

func (m *Manager) init() {
	auto := promauto.With(m.registry)

	m.eventsParsed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "ics_events_parsed_total",
		Help:      "Events read from uploaded .ics files, recurrences included.",
	})
	m.cardsImported = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "cards_imported_total",
		Help:      "Cards created by calendar imports.",
	})
	m.cardsMoved = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "cards_moved_total",
		Help:      "Cards dropped on a new timeline slot.",
	})
	m.registrations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "registrations_total",
		Help:      "Accounts created since start.",
	})

	m.cardsStored = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "cards_stored",
		Help:      "Cards in the database at the last maintenance run.",
	})
	m.usersTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "users_registered",
		Help:      "Accounts in the database at the last maintenance run.",
	})
	m.lastPurged = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "cards_purged_last_run",
		Help:      "Cards removed by the last retention purge.",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		},
		[]string{"route", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   m.buckets,
		},
		[]string{"route", "method", "status_code"},
	)

	if m.goMetrics {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the registry the metrics live on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

func (m *Manager) EventsParsed(n int)  { m.eventsParsed.Add(float64(n)) }
func (m *Manager) CardsImported(n int) { m.cardsImported.Add(float64(n)) }
func (m *Manager) CardMoved()          { m.cardsMoved.Inc() }
func (m *Manager) UserRegistered()     { m.registrations.Inc() }

func (m *Manager) SetCardsStored(n int64)     { m.cardsStored.Set(float64(n)) }
func (m *Manager) SetUsersRegistered(n int64) { m.usersTotal.Set(float64(n)) }
func (m *Manager) SetLastPurged(n int64)      { m.lastPurged.Set(float64(n)) }

// RecordRequest counts one served request.
func (m *Manager) RecordRequest(route, method, status string, seconds float64) {
	m.httpRequests.WithLabelValues(route, method, status).Inc()
	m.httpRequestDuration.WithLabelValues(route, method, status).Observe(seconds)
}
