// Package metrics holds the prometheus instruments shared by the sync
// pipeline. One Metrics value is built in main and handed to modules
// through their deps so every component records into the same registry.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "chatmirror"

// Metrics bundles the collectors for backfill windows, the live event
// queue, and outbound source calls.
type Metrics struct {
	registerer prometheus.Registerer

	windowsTotal  *prometheus.CounterVec
	windowSeconds *prometheus.HistogramVec

	queueDepth      *prometheus.GaugeVec
	flushedTotal    *prometheus.CounterVec
	flushTicksTotal *prometheus.CounterVec
	flushSeconds    prometheus.Histogram

	sourceRequests *prometheus.CounterVec
	sourceRetries  *prometheus.CounterVec

	mu         sync.Mutex
	registered bool
}

// New builds the instrument set. A nil registerer falls back to the
// prometheus default registerer.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Metrics{
		registerer: registerer,

		windowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "backfill",
				Name:      "windows_total",
				Help:      "Backfill windows processed, by scheduler state and outcome.",
			},
			[]string{"state", "outcome"},
		),
		windowSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "backfill",
				Name:      "window_seconds",
				Help:      "Wall time spent collecting one window.",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"state"},
		),

		queueDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "queue",
				Name:      "depth",
				Help:      "Events currently buffered per queue kind.",
			},
			[]string{"kind"},
		),
		flushedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "queue",
				Name:      "flushed_total",
				Help:      "Events written to storage per queue kind.",
			},
			[]string{"kind"},
		),
		flushTicksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "queue",
				Name:      "flush_ticks_total",
				Help:      "Flush ticks, by outcome.",
			},
			[]string{"outcome"},
		),
		flushSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "queue",
				Name:      "flush_seconds",
				Help:      "Wall time spent inside one flush tick.",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),

		sourceRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "source",
				Name:      "requests_total",
				Help:      "Requests sent to the chat source API, by endpoint and HTTP code.",
			},
			[]string{"endpoint", "code"},
		),
		sourceRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "source",
				Name:      "retries_total",
				Help:      "Retried chat source API requests, by endpoint.",
			},
			[]string{"endpoint"},
		),
	}
}

// Register attaches the collectors to the registerer. Safe to call more
// than once; collectors that already exist are left in place.
func (m *Metrics) Register() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	collectors := []prometheus.Collector{
		m.windowsTotal,
		m.windowSeconds,
		m.queueDepth,
		m.flushedTotal,
		m.flushTicksTotal,
		m.flushSeconds,
		m.sourceRequests,
		m.sourceRetries,
	}

	for _, c := range collectors {
		if err := m.registerer.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}

	m.registered = true
	return nil
}

// ObserveWindow records one finished window pass.
func (m *Metrics) ObserveWindow(state, outcome string, took time.Duration) {
	m.windowsTotal.WithLabelValues(state, outcome).Inc()
	m.windowSeconds.WithLabelValues(state).Observe(took.Seconds())
}

// SetQueueDepth publishes the buffered event count for one kind.
func (m *Metrics) SetQueueDepth(kind string, depth int) {
	m.queueDepth.WithLabelValues(kind).Set(float64(depth))
}

// AddFlushed counts events written out of the queue for one kind.
func (m *Metrics) AddFlushed(kind string, n int) {
	if n <= 0 {
		return
	}
	m.flushedTotal.WithLabelValues(kind).Add(float64(n))
}

// ObserveFlushTick records one flush pass and its outcome.
func (m *Metrics) ObserveFlushTick(outcome string, took time.Duration) {
	m.flushTicksTotal.WithLabelValues(outcome).Inc()
	m.flushSeconds.Observe(took.Seconds())
}

// ObserveSourceRequest counts one chat source API call.
func (m *Metrics) ObserveSourceRequest(endpoint, code string) {
	m.sourceRequests.WithLabelValues(endpoint, code).Inc()
}

// AddSourceRetry counts a retried chat source API call.
func (m *Metrics) AddSourceRetry(endpoint string) {
	m.sourceRetries.WithLabelValues(endpoint).Inc()
}
